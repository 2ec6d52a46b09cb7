// ABOUTME: Shared fixtures for handler tests
// ABOUTME: Decodes tool envelopes and builds opportunity rows
package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/harperreed/sfmcp/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.May, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// decode unmarshals the single text block of a tool result into v.
func decode(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	require.NoError(t, json.Unmarshal([]byte(text.Text), v))
}

func decodeMap(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	var m map[string]any
	decode(t, res, &m)
	return m
}

func ptr[T any](v T) *T { return &v }

func oppRow(id, name string, amount float64, stage, industry string) models.Record {
	return models.Record{
		"Id":          id,
		"Name":        name,
		"Amount":      amount,
		"StageName":   stage,
		"Probability": 50.0,
		"CloseDate":   "2025-06-30",
		"IsWon":       stage == "Closed Won",
		"IsClosed":    stage == "Closed Won" || stage == "Closed Lost",
		"LeadSource":  "Web",
		"Account":     map[string]any{"Name": name + " Inc", "Industry": industry},
		"Owner":       map[string]any{"Name": "Dana Reyes"},
	}
}

func taskRow(subject, typ, created string) models.Record {
	return models.Record{
		"Id":          "00T" + created,
		"Subject":     subject,
		"Type":        typ,
		"Status":      "Completed",
		"CreatedDate": created,
		"Who":         map[string]any{"Name": "Sam Okafor"},
	}
}
