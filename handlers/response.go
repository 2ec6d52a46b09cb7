// ABOUTME: Shared response envelope and per-call instrumentation for MCP tools
// ABOUTME: Every tool result is a single pretty-printed JSON text block
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// envelope renders v as the text content of a tool result.
func envelope(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

// failure is the envelope analytics tools return instead of an error.
// stampKey names the timestamp field the successful payload would carry.
func failure(err error, stampKey string, now time.Time, extra map[string]any) (*mcp.CallToolResult, any, error) {
	body := map[string]any{
		"success": false,
		"error":   err.Error(),
		stampKey:  stamp(now),
	}
	for k, v := range extra {
		body[k] = v
	}
	return envelope(body)
}

// logged validates the input, runs h, and logs the call with a correlation id.
// Invalid input never reaches h.
func logged[In any](logger *log.Logger, tool string, h mcp.ToolHandlerFor[In, any]) mcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		l := logger.With("call", uuid.NewString(), "tool", tool)
		start := time.Now()

		if err := validateInput(tool, in); err != nil {
			l.Warn("rejected", "err", err)
			return nil, nil, err
		}

		res, out, err := h(ctx, req, in)
		elapsed := time.Since(start)
		switch {
		case err != nil:
			l.Error("failed", "duration", elapsed, "err", err)
		case res != nil && res.IsError:
			l.Warn("tool error", "duration", elapsed)
		default:
			l.Info("ok", "duration", elapsed)
		}
		return res, out, err
	}
}
