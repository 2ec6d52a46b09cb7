// ABOUTME: Business-case document outline MCP tool handler
// ABOUTME: Returns a data-gathering plan and markdown template rather than a rendered document
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/sfmcp/query"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type DocumentHandlers struct{}

func NewDocumentHandlers() *DocumentHandlers {
	return &DocumentHandlers{}
}

type GenerateDocumentOutlineInput struct {
	RecordID     string `json:"recordId" jsonschema:"ID of the opportunity the business case is for" validate:"required"`
	ClientName   string `json:"clientName,omitempty" jsonschema:"Client name for the document title"`
	OutputFormat string `json:"outputFormat,omitempty" jsonschema:"pdf (default), docx or markdown" validate:"omitempty,oneof=pdf docx markdown"`
}

type OutlineStep struct {
	Action  string         `json:"action"`
	Params  map[string]any `json:"params,omitempty"`
	Purpose string         `json:"purpose"`
}

type DocumentOutline struct {
	Success          bool          `json:"success"`
	RecordID         string        `json:"recordId"`
	ClientName       string        `json:"clientName,omitempty"`
	OutputFormat     string        `json:"outputFormat"`
	DataGathering    []OutlineStep `json:"dataGatheringSteps"`
	Template         string        `json:"contentTemplate"`
	Export           OutlineStep   `json:"exportStep"`
	IntegrationNotes []string      `json:"integrationNotes"`
	Tips             []string      `json:"tips"`
}

const businessCaseTemplate = `# Business Case: [Opportunity Name]

## Executive Summary
**Client**: [Account Name]
**Opportunity**: [Opportunity Name]
**Value**: $[Amount]
**Stage**: [Stage] ([Probability]%)
**Target Close**: [Close Date]

## Client Profile
- **Company**: [Account Name]
- **Industry**: [Industry]
- **Website**: [Website]
- **Key Contacts**: [Contacts]

## Engagement Overview
- **Calls**: [Call Count]
- **Email Exchanges**: [Inbound] inbound / [Outbound] outbound
- **Last Activity**: [Last Activity Date]
- **Call Topics**: [Call Topics]

## Value Proposition
Similar successful engagements averaged $[Average Similar Deal]. This engagement is expected to deliver:

- **Faster Delivery**: shorter cycle from idea to production
- **Higher Quality**: fewer defects reaching customers
- **Team Alignment**: shared tooling and methodology across teams
- **Measurable ROI**: realized within the first two quarters

## Success Pattern Analysis
From [Similar Deal Count] similar wins:
- **Average Deal Size**: $[Average Similar Deal]
- **Common Industries**: [Top Industries]
- **Typical Timeline**: 90-day initial implementation with ongoing support

## Recommended Next Steps
[Engagement Recommendations]

## Risk Mitigation
- Start with a pilot team to prove value
- Phase the rollout to limit disruption
- Keep coaching in place after go-live

**Prepared**: [Current Date]
**Opportunity ID**: [Opportunity ID]
`

func (h *DocumentHandlers) GenerateDocumentOutline(_ context.Context, _ *mcp.CallToolRequest, input GenerateDocumentOutlineInput) (*mcp.CallToolResult, any, error) {
	format := input.OutputFormat
	if format == "" {
		format = "pdf"
	}

	contacts := fmt.Sprintf("SELECT Contact.Name, Contact.Title, Contact.Email, Contact.Phone, Role FROM OpportunityContactRole WHERE OpportunityId = %s", query.Quote(input.RecordID))

	return envelope(DocumentOutline{
		Success:      true,
		RecordID:     input.RecordID,
		ClientName:   input.ClientName,
		OutputFormat: format,
		DataGathering: []OutlineStep{
			{
				Action:  "get_record_details",
				Params:  map[string]any{"recordId": input.RecordID},
				Purpose: "Core opportunity information: stage, amount, close date and account",
			},
			{
				Action:  "analyze_engagement",
				Params:  map[string]any{"recordId": input.RecordID},
				Purpose: "Engagement patterns, call history and communication recommendations",
			},
			{
				Action:  "execute_query",
				Params:  map[string]any{"query": contacts},
				Purpose: "Key stakeholders and decision makers",
			},
			{
				Action:  "find_similar_records",
				Params:  map[string]any{"referenceRecordId": input.RecordID, "isWon": true, "limit": 10},
				Purpose: "Similar won deals for benchmarking and pattern analysis",
			},
		},
		Template: businessCaseTemplate,
		Export: OutlineStep{
			Action: "Render the completed template with a document tool and export it",
			Params: map[string]any{
				"format":      format,
				"output_path": fmt.Sprintf("business_case_%s.%s", input.RecordID, format),
			},
			Purpose: "Produce the business case in the requested format",
		},
		IntegrationNotes: []string{
			"Fill [Opportunity Name], [Amount], [Stage], [Probability] and [Close Date] from get_record_details basic_info",
			"Fill [Account Name], [Industry] and [Website] from the account block; use 'Technology Services' when industry is empty",
			"Fill [Contacts] from the stakeholder query",
			"Fill [Call Count], [Inbound], [Outbound], [Last Activity Date] and [Call Topics] from analyze_engagement insights",
			"Fill [Average Similar Deal], [Similar Deal Count] and [Top Industries] from find_similar_records analysis",
			"Use the analyze_engagement recommendations for Recommended Next Steps",
			"Fill [Current Date] with today's date and [Opportunity ID] with " + input.RecordID,
		},
		Tips: []string{
			"Format currency with thousands separators, e.g. $30,000",
			"Format dates consistently, e.g. July 30, 2025",
			"Use TBD for anything the data does not provide",
			"Quote specific call topics to show an active relationship",
		},
	})
}
