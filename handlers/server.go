// ABOUTME: MCP server assembly
// ABOUTME: Registers every tool, resource and prompt against one Salesforce client
package handlers

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/harperreed/sfmcp/query"
	"github.com/harperreed/sfmcp/salesforce"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ServerOptions struct {
	Name        string
	Version     string
	MatchPolicy query.MatchPolicy
	Logger      *log.Logger
}

func addTool[In any](s *mcp.Server, logger *log.Logger, name, description string, h mcp.ToolHandlerFor[In, any]) {
	mcp.AddTool(s, &mcp.Tool{Name: name, Description: description}, logged(logger, name, h))
}

// NewServer builds the tool server. The client must already be initialized.
func NewServer(client *salesforce.Client, opts ServerOptions) *mcp.Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Name == "" {
		opts.Name = "salesforce-cloud"
	}
	if opts.Version == "" {
		opts.Version = "0.1.0"
	}
	if opts.MatchPolicy == "" {
		opts.MatchPolicy = query.MatchBoundary
	}

	server := mcp.NewServer(&mcp.Implementation{Name: opts.Name, Version: opts.Version}, nil)

	records := NewRecordHandlers(client)
	opps := NewOpportunityHandlers(client, opts.MatchPolicy)
	docs := NewDocumentHandlers()
	graphs := NewVizHandlers(client)

	addTool(server, logger, "execute_query",
		"Execute a SOQL query. Custom fields end in __c; use describe_object first to discover field API names.",
		records.ExecuteQuery)
	addTool(server, logger, "describe_object",
		"Get metadata about an object. Set includeFields to list fields, including custom fields, with their types.",
		records.DescribeObject)
	addTool(server, logger, "create_record",
		"Create a record. Data may include standard and custom fields.",
		records.CreateRecord)
	addTool(server, logger, "update_record",
		"Update fields on an existing record.",
		records.UpdateRecord)
	addTool(server, logger, "delete_record",
		"Delete a record.",
		records.DeleteRecord)
	addTool(server, logger, "get_user_info",
		"Get information about the authenticated user.",
		records.GetUserInfo)
	addTool(server, logger, "list_objects",
		"List the standard and custom objects available in the org.",
		records.ListObjects)
	addTool(server, logger, "get_record_details",
		"Get an opportunity with its account, owner, contact roles, field history, notes and tasks.",
		opps.GetRecordDetails)
	addTool(server, logger, "search_records",
		"Search opportunities by name, account, stage, amount and close date. Ordered by close date, newest first.",
		opps.SearchRecords)
	addTool(server, logger, "analyze_engagement",
		"Analyze calls, emails and other activity on an opportunity and recommend next steps.",
		opps.AnalyzeEngagement)
	addTool(server, logger, "enrich_record",
		"Enrich an opportunity with market intelligence and strategic insights drawn from comparable won deals.",
		opps.EnrichRecord)
	addTool(server, logger, "find_similar_records",
		"Find opportunities similar to a reference opportunity or matching explicit criteria, with similarity scores and pattern analysis.",
		opps.FindSimilarRecords)
	addTool(server, logger, "record_insights",
		"Pipeline analytics for a timeframe: core metrics, stages, owners, industries, pipeline health, conversion rates and recommendations.",
		opps.RecordInsights)
	addTool(server, logger, "generate_document_outline",
		"Plan a business-case document for an opportunity: which tools to call, a markdown template and export instructions.",
		docs.GenerateDocumentOutline)
	addTool(server, logger, "generate_pipeline_graph",
		"Render the pipeline for a timeframe as a GraphViz DOT graph of stages and their conversion to won.",
		graphs.GeneratePipelineGraph)

	resources := NewResourceHandlers(client)
	for _, r := range resources.Resources() {
		server.AddResource(r, resources.ReadResource)
	}
	server.AddResourceTemplate(resources.ObjectTemplate(), resources.ReadResource)

	prompts := NewPromptHandlers(client)
	for _, p := range prompts.Prompts() {
		server.AddPrompt(p, prompts.GetPrompt)
	}

	return server
}
