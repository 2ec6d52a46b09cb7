// ABOUTME: MCP prompt handlers for recurring sales workflows
// ABOUTME: Builds pipeline-analysis and deal-brief prompts from live org data
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/harperreed/sfmcp/analytics"
	"github.com/harperreed/sfmcp/models"
	"github.com/harperreed/sfmcp/query"
	"github.com/harperreed/sfmcp/salesforce"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	opps *OpportunityHandlers
}

func NewPromptHandlers(client *salesforce.Client) *PromptHandlers {
	return &PromptHandlers{opps: NewOpportunityHandlers(client, query.MatchBoundary)}
}

func (h *PromptHandlers) Prompts() []*mcp.Prompt {
	return []*mcp.Prompt{
		{
			Name:        "pipeline-analysis",
			Description: "Review pipeline health, stage distribution and owner performance",
			Arguments: []*mcp.PromptArgument{
				{Name: "timeframe", Description: "current_quarter (default), last_quarter, current_year, last_year or all_time"},
			},
		},
		{
			Name:        "deal-brief",
			Description: "Summarize one opportunity and its recent engagement before a customer meeting",
			Arguments: []*mcp.PromptArgument{
				{Name: "recordId", Description: "Opportunity ID", Required: true},
			},
		},
	}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := request.Params.Arguments
	switch request.Params.Name {
	case "pipeline-analysis":
		return h.pipelineAnalysisPrompt(ctx, args)
	case "deal-brief":
		return h.dealBriefPrompt(ctx, args)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return models.UnknownLabel
	}
	return s
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text}},
		},
	}
}

func (h *PromptHandlers) pipelineAnalysisPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	now := h.opps.now()
	timeframe := query.Timeframe(args["timeframe"])
	if timeframe == "" {
		timeframe = query.CurrentQuarter
	}

	opps, err := LoadPipeline(ctx, h.opps.client, query.InsightFilters{Timeframe: timeframe}, now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pipeline: %w", err)
	}
	report, err := analytics.BuildReport(opps, analytics.AllSections(), now)
	if err != nil {
		return nil, err
	}

	var promptText strings.Builder
	fmt.Fprintf(&promptText, "Please analyze the %s opportunity pipeline:\n\n", strings.ReplaceAll(string(timeframe), "_", " "))
	fmt.Fprintf(&promptText, "Total Opportunities: %d\n", report.CoreMetrics.TotalOpportunities)
	fmt.Fprintf(&promptText, "Total Value: $%s\n", humanize.Commaf(report.CoreMetrics.TotalValue))
	fmt.Fprintf(&promptText, "Win Rate: %d%%\n", report.CoreMetrics.WinRate)
	fmt.Fprintf(&promptText, "Pipeline Health Score: %d/100\n\n", report.PipelineHealth.HealthScore)

	promptText.WriteString("Pipeline by Stage:\n")
	for _, s := range report.StageAnalysis.Stages {
		fmt.Fprintf(&promptText, "  - %s: %d deals, $%s\n", s.Stage, s.Count, humanize.Commaf(s.Value))
	}
	if len(report.StrategicRecommendations) > 0 {
		promptText.WriteString("\nFlagged issues:\n")
		for _, r := range report.StrategicRecommendations {
			fmt.Fprintf(&promptText, "  - [%s] %s\n", r.Priority, r.Issue)
		}
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. Analysis of pipeline health and distribution")
	promptText.WriteString("\n2. Deals that may need attention")
	promptText.WriteString("\n3. Suggestions for improving conversion rates")

	return userPrompt("Pipeline analysis", promptText.String()), nil
}

func (h *PromptHandlers) dealBriefPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	id, ok := args["recordId"]
	if !ok || id == "" {
		return nil, fmt.Errorf("recordId is required")
	}

	opp, err := h.opps.fetchOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}

	soql, err := query.ActivitiesFor(id)
	if err != nil {
		return nil, err
	}
	records, err := h.opps.client.QueryAll(ctx, soql)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	engagement, err := analytics.AnalyzeEngagement(models.ActivitiesFromRecords(records), h.opps.now())
	if err != nil {
		return nil, err
	}

	var promptText strings.Builder
	fmt.Fprintf(&promptText, "Please prepare a brief for the opportunity %q:\n\n", opp.Name)
	fmt.Fprintf(&promptText, "Account: %s\n", orUnknown(opp.AccountName))
	fmt.Fprintf(&promptText, "Industry: %s\n", orUnknown(opp.Industry))
	fmt.Fprintf(&promptText, "Stage: %s (%.0f%%)\n", opp.Stage, opp.Probability)
	if opp.Amount != nil {
		fmt.Fprintf(&promptText, "Amount: $%s\n", humanize.Commaf(*opp.Amount))
	}
	if opp.CloseDate != nil {
		fmt.Fprintf(&promptText, "Close Date: %s\n", opp.CloseDate.Format(time.DateOnly))
	}

	fmt.Fprintf(&promptText, "\nEngagement: %d activities, %d calls, trend %s\n",
		engagement.TotalActivities, engagement.Calls, engagement.EngagementTrend)
	if len(engagement.CallTopics) > 0 {
		fmt.Fprintf(&promptText, "Call topics: %s\n", strings.Join(engagement.CallTopics, "; "))
	}
	if len(engagement.KeyContacts) > 0 {
		fmt.Fprintf(&promptText, "Key contacts: %s\n", strings.Join(engagement.KeyContacts, ", "))
	}
	for _, r := range engagement.Recommendations {
		fmt.Fprintf(&promptText, "  - [%s] %s\n", r.Priority, r.Message)
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. A one-paragraph status summary")
	promptText.WriteString("\n2. Open risks and how to address them")
	promptText.WriteString("\n3. Talking points for the next conversation")

	return userPrompt(fmt.Sprintf("Deal brief for %s", opp.Name), promptText.String()), nil
}
