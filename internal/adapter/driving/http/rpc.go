package httphandler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/inflectionhq/inflection-mcp/internal/domain/port/driven"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
)

const protocolVersion = "2025-06-18"

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// toolDefinition is the wire shape of a tool in tools/list.
type toolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// toolContent is one content block of a tools/call result.
type toolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// toolResult is the result shape of tools/call.
type toolResult struct {
	Content []toolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// toolDefinitions returns the tools this server exposes. The schemas mirror
// the journey listing and report parameters accepted by the REST endpoints.
func toolDefinitions() []toolDefinition {
	return []toolDefinition{
		{
			Name:        "list_journeys",
			Description: "List marketing journeys from Inflection.io, optionally filtered by a name search keyword.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"page_size": map[string]any{
						"type":        "integer",
						"description": "Number of journeys per page (default 30, max 100)",
						"minimum":     1,
						"maximum":     100,
					},
					"page_number": map[string]any{
						"type":        "integer",
						"description": "Page number to retrieve (default 1)",
						"minimum":     1,
					},
					"search_keyword": map[string]any{
						"type":        "string",
						"description": "Keyword to filter journeys by name",
					},
				},
			},
		},
		{
			Name:        "get_email_reports",
			Description: "Fetch the composed email report (aggregate, engagement, report runs, top links, email clients, bounces) for one journey.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"journey_id": map[string]any{
						"type":        "string",
						"description": "Journey ID to report on",
					},
					"start_date": map[string]any{
						"type":        "string",
						"description": "Range start (YYYY-MM-DD or RFC 3339); defaults to 30 days ago",
					},
					"end_date": map[string]any{
						"type":        "string",
						"description": "Range end (YYYY-MM-DD or RFC 3339); defaults to now",
					},
				},
				"required": []string{"journey_id"},
			},
		},
	}
}

type listJourneysArgs struct {
	PageSize      int    `json:"page_size" validate:"omitempty,gte=1,lte=100"`
	PageNumber    int    `json:"page_number" validate:"omitempty,gte=1"`
	SearchKeyword string `json:"search_keyword"`
}

type emailReportsArgs struct {
	JourneyID string `json:"journey_id" validate:"required"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// RPC serves the JSON-RPC 2.0 tool-calling endpoint.
func (h *Handler) RPC(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRPC(w, rpcResponse{JSONRPC: "2.0", Error: &rpcError{Code: codeParseError, Message: "parse error"}})
		return
	}
	if req.JSONRPC != "2.0" {
		writeRPC(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: codeInvalidRequest, Message: "jsonrpc must be \"2.0\""}})
		return
	}

	h.logger.Info("rpc request", "method", req.Method)

	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
	switch req.Method {
	case "initialize":
		resp.Result = map[string]any{
			"protocolVersion": protocolVersion,
			"serverInfo": map[string]any{
				"name":    "inflection-mcp",
				"version": "1.0.0",
			},
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
		}
	case "tools/list":
		resp.Result = map[string]any{"tools": toolDefinitions()}
	case "tools/call":
		result, rpcErr := h.callTool(r, req.Params)
		if rpcErr != nil {
			resp.Error = rpcErr
		} else {
			resp.Result = result
		}
	default:
		resp.Error = &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("method %q not found", req.Method)}
	}

	writeRPC(w, resp)
}

// callTool dispatches tools/call to the named tool. Tool input errors come
// back as invalid-params; upstream failures come back as a tool result with
// isError set, so callers see actionable text instead of a protocol fault.
func (h *Handler) callTool(r *http.Request, params json.RawMessage) (*toolResult, *rpcError) {
	var call struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: "invalid tools/call params"}
	}

	switch call.Name {
	case "list_journeys":
		var args listJourneysArgs
		if err := h.decodeArgs(call.Arguments, &args); err != nil {
			return nil, &rpcError{Code: codeInvalidParams, Message: err.Error()}
		}
		page, err := h.journeys.List(r.Context(), args.PageSize, args.PageNumber, args.SearchKeyword)
		if err != nil {
			return toolFailure(err), nil
		}
		return toolSuccess(toJourneyListResponse(page))
	case "get_email_reports":
		var args emailReportsArgs
		if err := h.decodeArgs(call.Arguments, &args); err != nil {
			return nil, &rpcError{Code: codeInvalidParams, Message: err.Error()}
		}
		report, err := h.reports.EmailReport(r.Context(), args.JourneyID, args.StartDate, args.EndDate)
		if err != nil {
			return toolFailure(err), nil
		}
		return toolSuccess(toEmailReportResponse(report))
	default:
		return nil, &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("unknown tool %q", call.Name)}
	}
}

// decodeArgs unmarshals tool arguments and applies struct-tag validation.
func (h *Handler) decodeArgs(raw json.RawMessage, into any) error {
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, into); err != nil {
			return fmt.Errorf("invalid tool arguments: %w", err)
		}
	}
	if err := h.validate.Struct(into); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}

// toolSuccess renders a result document as an indented JSON text block.
func toolSuccess(v any) (*toolResult, *rpcError) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, &rpcError{Code: codeServerError, Message: "encoding tool result failed"}
	}
	return &toolResult{Content: []toolContent{{Type: "text", Text: string(data)}}}, nil
}

// toolFailure translates an operation error into a tool result with isError
// set and a message the caller can act on. Non-auth errors keep their own
// text; it never contains credential material.
func toolFailure(err error) *toolResult {
	message := err.Error()
	if driven.IsAuthFailure(err) {
		message = authFailureMessage(err)
	}
	return &toolResult{
		Content: []toolContent{{Type: "text", Text: message}},
		IsError: true,
	}
}

// writeRPC writes a JSON-RPC response envelope.
func writeRPC(w http.ResponseWriter, resp rpcResponse) {
	writeJSON(w, http.StatusOK, resp)
}
