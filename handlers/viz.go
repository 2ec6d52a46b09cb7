// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides the generate_pipeline_graph tool for agents
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/sfmcp/models"
	"github.com/harperreed/sfmcp/query"
	"github.com/harperreed/sfmcp/salesforce"
	"github.com/harperreed/sfmcp/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type VizHandlers struct {
	client *salesforce.Client
	now    func() time.Time
}

func NewVizHandlers(client *salesforce.Client) *VizHandlers {
	return &VizHandlers{client: client, now: time.Now}
}

type GeneratePipelineGraphInput struct {
	Timeframe string `json:"timeframe,omitempty" jsonschema:"current_quarter (default), last_quarter, current_year, last_year or all_time" validate:"omitempty,oneof=current_quarter last_quarter current_year last_year all_time"`
	Industry  string `json:"industry,omitempty" jsonschema:"Restrict to one account industry"`
	Owner     string `json:"owner,omitempty" jsonschema:"Restrict to one owner name"`
}

type GeneratePipelineGraphOutput struct {
	GraphType string          `json:"graph_type"`
	Timeframe query.Timeframe `json:"timeframe"`
	Records   int             `json:"record_count"`
	DOTSource string          `json:"dot_source"`
	NodeCount int             `json:"node_count"`
	EdgeCount int             `json:"edge_count"`
}

// LoadPipeline fetches the opportunities a pipeline view covers.
func LoadPipeline(ctx context.Context, client *salesforce.Client, filters query.InsightFilters, now time.Time) ([]models.Opportunity, error) {
	if filters.Timeframe == "" {
		filters.Timeframe = query.CurrentQuarter
	}
	soql, _, err := filters.Query(now, insightRowLimit)
	if err != nil {
		return nil, err
	}
	records, err := client.QueryAll(ctx, soql)
	if err != nil {
		return nil, err
	}
	return models.OpportunitiesFromRecords(records), nil
}

func (h *VizHandlers) GeneratePipelineGraph(ctx context.Context, _ *mcp.CallToolRequest, input GeneratePipelineGraphInput) (*mcp.CallToolResult, any, error) {
	filters := query.InsightFilters{
		Timeframe: query.Timeframe(input.Timeframe),
		Industry:  input.Industry,
		Owner:     input.Owner,
	}
	opps, err := LoadPipeline(ctx, h.client, filters, h.now())
	if err != nil {
		return nil, nil, err
	}

	timeframe := filters.Timeframe
	if timeframe == "" {
		timeframe = query.CurrentQuarter
	}
	graph, err := viz.GeneratePipelineGraph(ctx, opps, fmt.Sprintf("Pipeline (%s)", timeframe))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate graph: %w", err)
	}

	return envelope(GeneratePipelineGraphOutput{
		GraphType: "pipeline",
		Timeframe: timeframe,
		Records:   len(opps),
		DOTSource: graph.DOT,
		NodeCount: graph.Nodes,
		EdgeCount: graph.Edges,
	})
}
