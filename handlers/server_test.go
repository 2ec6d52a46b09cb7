package handlers

import (
	"context"
	"testing"

	"github.com/harperreed/sfmcp/models"
	"github.com/harperreed/sfmcp/salesforce"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T) (*mcp.ClientSession, *salesforce.FakeBackend) {
	t.Helper()
	ctx := context.Background()
	client, fake := salesforce.NewTestClient(ctx)
	server := NewServer(client, ServerOptions{})

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	c := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := c.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session, fake
}

func TestServerListsEveryTool(t *testing.T) {
	session, _ := connect(t)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"execute_query", "describe_object", "create_record", "update_record", "delete_record",
		"get_user_info", "list_objects", "get_record_details", "search_records",
		"analyze_engagement", "enrich_record", "find_similar_records", "record_insights",
		"generate_document_outline", "generate_pipeline_graph",
	}, names)
}

func TestServerCallTool(t *testing.T) {
	ctx := context.Background()
	session, fake := connect(t)
	fake.DefaultRecords = []models.Record{{"Id": "001A", "Name": "Acme"}}

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "execute_query",
		Arguments: map[string]any{"query": "SELECT Id, Name FROM Account"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	text := res.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, `"Name": "Acme"`)
	assert.Contains(t, text, `"totalCount": 1`)

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "execute_query",
		Arguments: map[string]any{"query": ""},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].(*mcp.TextContent).Text, "query (required)")
	assert.Len(t, fake.Queries, 1)
}

func TestServerReadResource(t *testing.T) {
	ctx := context.Background()
	session, fake := connect(t)
	fake.User = salesforce.UserDescriptor{UserID: "005A", Username: "test@example.com"}

	res, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "salesforce://user"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Contains(t, res.Contents[0].Text, `"id": "005A"`)

	_, err = session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "salesforce://nothing"})
	assert.Error(t, err)
}

func TestServerGetPrompt(t *testing.T) {
	ctx := context.Background()
	session, fake := connect(t)
	fake.DefaultRecords = []models.Record{
		oppRow("006A", "Alpha", 100000, "Closed Won", "Technology"),
		oppRow("006B", "Beta", 50000, "Proposal", "Retail"),
	}

	res, err := session.GetPrompt(ctx, &mcp.GetPromptParams{
		Name:      "pipeline-analysis",
		Arguments: map[string]string{"timeframe": "all_time"},
	})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Please analyze the all time opportunity pipeline")
	assert.Contains(t, text, "Total Opportunities: 2")
	assert.Contains(t, text, "Total Value: $150,000")
}
