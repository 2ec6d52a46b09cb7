// ABOUTME: Analytics MCP tool handlers over opportunity data
// ABOUTME: Implements analyze_engagement, enrich_record, find_similar_records and record_insights
package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/harperreed/sfmcp/analytics"
	"github.com/harperreed/sfmcp/models"
	"github.com/harperreed/sfmcp/query"
	"github.com/harperreed/sfmcp/salesforce"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// These tools never return an error for backend or engine failures. They
// answer with {success:false, error, <timestamp>} instead.

const (
	defaultSimilarLimit = 50
	insightRowLimit     = 1000
)

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func (h *OpportunityHandlers) fetchOpportunity(ctx context.Context, id string) (models.Opportunity, error) {
	soql, err := query.ByID(opportunityObject, id, query.AnalyticsFields...)
	if err != nil {
		return models.Opportunity{}, err
	}
	record, err := h.client.QueryOne(ctx, soql, opportunityObject, id)
	if err != nil {
		return models.Opportunity{}, err
	}
	return models.OpportunityFromRecord(record), nil
}

type AnalyzeEngagementInput struct {
	RecordID string `json:"recordId" jsonschema:"ID of the opportunity whose activity to analyze" validate:"required"`
}

type EngagementOutput struct {
	Success      bool                          `json:"success"`
	RecordID     string                        `json:"recordId"`
	Insights     *analytics.EngagementInsights `json:"insights"`
	AnalysisDate string                        `json:"analysisDate"`
}

func (h *OpportunityHandlers) AnalyzeEngagement(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeEngagementInput) (*mcp.CallToolResult, any, error) {
	now := h.now()
	fail := func(err error) (*mcp.CallToolResult, any, error) {
		return failure(err, "analysisDate", now, map[string]any{"recordId": input.RecordID})
	}

	soql, err := query.ActivitiesFor(input.RecordID)
	if err != nil {
		return fail(err)
	}
	records, err := h.client.QueryAll(ctx, soql)
	if err != nil {
		return fail(err)
	}
	insights, err := analytics.AnalyzeEngagement(models.ActivitiesFromRecords(records), now)
	if err != nil {
		return fail(err)
	}

	return envelope(EngagementOutput{
		Success:      true,
		RecordID:     input.RecordID,
		Insights:     insights,
		AnalysisDate: stamp(now),
	})
}

type EnrichRecordInput struct {
	RecordID                string `json:"recordId" jsonschema:"ID of the opportunity to enrich" validate:"required"`
	IncludeCompetitiveIntel *bool  `json:"includeCompetitiveIntel,omitempty" jsonschema:"Include competitive intelligence (default false)"`
	IncludeBestPractices    *bool  `json:"includeBestPractices,omitempty" jsonschema:"Include industry best practices (default true)"`
}

type EnrichmentOutput struct {
	Success  bool   `json:"success"`
	RecordID string `json:"recordId"`
	analytics.Enrichment
	EnrichmentDate string `json:"enrichmentDate"`
}

func (h *OpportunityHandlers) EnrichRecord(ctx context.Context, _ *mcp.CallToolRequest, input EnrichRecordInput) (*mcp.CallToolResult, any, error) {
	now := h.now()
	fail := func(err error) (*mcp.CallToolResult, any, error) {
		return failure(err, "enrichmentDate", now, map[string]any{"recordId": input.RecordID})
	}

	opp, err := h.fetchOpportunity(ctx, input.RecordID)
	if err != nil {
		return fail(err)
	}

	lo, hi := analytics.ComparableBand(opp.Amount)
	soql, err := query.ComparableWins(input.RecordID, lo, hi, analytics.ComparableLimit)
	if err != nil {
		return fail(err)
	}
	records, err := h.client.QueryAll(ctx, soql)
	if err != nil {
		return fail(err)
	}

	enrichment := analytics.Enrich(opp, models.OpportunitiesFromRecords(records), analytics.EnrichOptions{
		BestPractices:    boolOr(input.IncludeBestPractices, true),
		CompetitiveIntel: boolOr(input.IncludeCompetitiveIntel, false),
	}, now)

	return envelope(EnrichmentOutput{
		Success:        true,
		RecordID:       input.RecordID,
		Enrichment:     enrichment,
		EnrichmentDate: stamp(now),
	})
}

type FindSimilarRecordsInput struct {
	ReferenceRecordID string   `json:"referenceRecordId,omitempty" jsonschema:"Opportunity whose characteristics define similarity"`
	Industry          string   `json:"industry,omitempty" jsonschema:"Account industry, e.g. Information Technology & Services"`
	MinAmount         *float64 `json:"minAmount,omitempty" jsonschema:"Minimum amount"`
	MaxAmount         *float64 `json:"maxAmount,omitempty" jsonschema:"Maximum amount"`
	Stage             string   `json:"stage,omitempty" jsonschema:"Exact stage, e.g. Closed Won or Proposal"`
	IsWon             *bool    `json:"isWon,omitempty" jsonschema:"Filter by won or lost"`
	CloseDateStart    string   `json:"closeDateStart,omitempty" jsonschema:"Earliest close date (YYYY-MM-DD)" validate:"omitempty,datetime=2006-01-02"`
	CloseDateEnd      string   `json:"closeDateEnd,omitempty" jsonschema:"Latest close date (YYYY-MM-DD)" validate:"omitempty,datetime=2006-01-02"`
	IncludeAnalysis   *bool    `json:"includeAnalysis,omitempty" jsonschema:"Include pattern analysis (default true)"`
	Limit             *int     `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)" validate:"omitempty,gte=1,lte=2000"`
}

type ReferenceSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Amount   *float64 `json:"amount"`
	Industry string   `json:"industry,omitempty"`
	Stage    string   `json:"stage"`
}

type SimilarAccount struct {
	Name      string   `json:"name,omitempty"`
	Industry  string   `json:"industry,omitempty"`
	Employees *float64 `json:"employees,omitempty"`
}

type SimilarRecord struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Amount      *float64       `json:"amount"`
	Stage       string         `json:"stage"`
	Probability float64        `json:"probability"`
	CloseDate   *time.Time     `json:"closeDate"`
	IsWon       bool           `json:"isWon"`
	Account     SimilarAccount `json:"account"`
	Owner       string         `json:"owner,omitempty"`
	LeadSource  string         `json:"leadSource,omitempty"`
	Similarity  int            `json:"similarity"`
}

type SimilarResults struct {
	TotalFound int             `json:"totalFound"`
	Records    []SimilarRecord `json:"records"`
}

type SimilarOutput struct {
	Success         bool                       `json:"success"`
	SearchCriteria  query.SimilarCriteria      `json:"searchCriteria"`
	ReferenceRecord *ReferenceSummary          `json:"referenceRecord"`
	Results         SimilarResults             `json:"results"`
	Analysis        *analytics.PatternAnalysis `json:"analysis"`
	SearchDate      string                     `json:"searchDate"`
}

func (h *OpportunityHandlers) FindSimilarRecords(ctx context.Context, _ *mcp.CallToolRequest, input FindSimilarRecordsInput) (*mcp.CallToolResult, any, error) {
	now := h.now()
	fail := func(err error) (*mcp.CallToolResult, any, error) {
		return failure(err, "searchDate", now, nil)
	}

	// an unknown reference falls back to the explicit criteria
	var ref *models.Opportunity
	if input.ReferenceRecordID != "" {
		opp, err := h.fetchOpportunity(ctx, input.ReferenceRecordID)
		switch {
		case err == nil:
			ref = &opp
		case !errors.Is(err, salesforce.ErrNotFound):
			return fail(err)
		}
	}

	criteria := analytics.DeriveCriteria(query.SimilarCriteria{
		Industry:       input.Industry,
		MinAmount:      input.MinAmount,
		MaxAmount:      input.MaxAmount,
		Stage:          input.Stage,
		IsWon:          input.IsWon,
		CloseDateStart: input.CloseDateStart,
		CloseDateEnd:   input.CloseDateEnd,
	}, ref)

	limit := defaultSimilarLimit
	if input.Limit != nil {
		limit = *input.Limit
	}
	soql, err := criteria.Query(limit)
	if err != nil {
		return fail(err)
	}
	records, err := h.client.QueryAll(ctx, soql)
	if err != nil {
		return fail(err)
	}
	opps := models.OpportunitiesFromRecords(records)

	out := SimilarOutput{
		Success:        true,
		SearchCriteria: criteria,
		Results: SimilarResults{
			TotalFound: len(opps),
			Records:    make([]SimilarRecord, len(opps)),
		},
		SearchDate: stamp(now),
	}
	if ref != nil {
		out.ReferenceRecord = &ReferenceSummary{
			ID:       ref.ID,
			Name:     ref.Name,
			Amount:   ref.Amount,
			Industry: ref.Industry,
			Stage:    ref.Stage,
		}
	}
	for i, o := range opps {
		out.Results.Records[i] = SimilarRecord{
			ID:          o.ID,
			Name:        o.Name,
			Amount:      o.Amount,
			Stage:       o.Stage,
			Probability: o.Probability,
			CloseDate:   o.CloseDate,
			IsWon:       o.IsWon,
			Account:     SimilarAccount{Name: o.AccountName, Industry: o.Industry, Employees: o.Employees},
			Owner:       o.OwnerName,
			LeadSource:  o.LeadSource,
			Similarity:  analytics.Similarity(o, ref),
		}
	}
	if boolOr(input.IncludeAnalysis, true) {
		analysis := analytics.AnalyzePatterns(opps, ref, now)
		out.Analysis = &analysis
	}
	return envelope(out)
}

type RecordInsightsInput struct {
	Timeframe               string   `json:"timeframe,omitempty" jsonschema:"current_quarter (default), last_quarter, current_year, last_year or all_time" validate:"omitempty,oneof=current_quarter last_quarter current_year last_year all_time"`
	IncludeStageAnalysis    *bool    `json:"includeStageAnalysis,omitempty" jsonschema:"Include stage distribution (default true)"`
	IncludeOwnerPerformance *bool    `json:"includeOwnerPerformance,omitempty" jsonschema:"Include per-owner performance (default true)"`
	IncludeIndustryTrends   *bool    `json:"includeIndustryTrends,omitempty" jsonschema:"Include industry trends (default true)"`
	IncludePipelineHealth   *bool    `json:"includePipelineHealth,omitempty" jsonschema:"Include pipeline health and timing (default true)"`
	IncludeConversionRates  *bool    `json:"includeConversionRates,omitempty" jsonschema:"Include stage conversion rates (default true)"`
	MinAmount               *float64 `json:"minAmount,omitempty" jsonschema:"Minimum amount"`
	MaxAmount               *float64 `json:"maxAmount,omitempty" jsonschema:"Maximum amount"`
	Industry                string   `json:"industry,omitempty" jsonschema:"Restrict to one account industry"`
	Owner                   string   `json:"owner,omitempty" jsonschema:"Restrict to one owner name"`
}

type DataRange struct {
	DateFilter   string   `json:"dateFilter"`
	TotalRecords int      `json:"totalRecords"`
	Filters      []string `json:"filters"`
}

type InsightsOutput struct {
	Success            bool            `json:"success"`
	Timeframe          query.Timeframe `json:"timeframe"`
	TotalOpportunities int             `json:"totalOpportunities"`
	DataRange          DataRange       `json:"dataRange"`
	GeneratedAt        string          `json:"generatedAt"`
	analytics.Report
}

func filterSummary(in RecordInsightsInput) []string {
	var filters []string
	if in.MinAmount != nil {
		filters = append(filters, "Min Amount: $"+humanize.Commaf(*in.MinAmount))
	}
	if in.MaxAmount != nil {
		filters = append(filters, "Max Amount: $"+humanize.Commaf(*in.MaxAmount))
	}
	if in.Industry != "" {
		filters = append(filters, "Industry: "+in.Industry)
	}
	if in.Owner != "" {
		filters = append(filters, "Owner: "+in.Owner)
	}
	if len(filters) == 0 {
		return []string{"No additional filters"}
	}
	return filters
}

func (h *OpportunityHandlers) RecordInsights(ctx context.Context, _ *mcp.CallToolRequest, input RecordInsightsInput) (*mcp.CallToolResult, any, error) {
	now := h.now()
	fail := func(err error) (*mcp.CallToolResult, any, error) {
		return failure(err, "generatedAt", now, nil)
	}

	timeframe := query.CurrentQuarter
	if input.Timeframe != "" {
		timeframe = query.Timeframe(input.Timeframe)
	}

	soql, dateConds, err := query.InsightFilters{
		Timeframe: timeframe,
		MinAmount: input.MinAmount,
		MaxAmount: input.MaxAmount,
		Industry:  input.Industry,
		Owner:     input.Owner,
	}.Query(now, insightRowLimit)
	if err != nil {
		return fail(err)
	}

	records, err := h.client.QueryAll(ctx, soql)
	if err != nil {
		return fail(err)
	}
	opps := models.OpportunitiesFromRecords(records)

	report, err := analytics.BuildReport(opps, analytics.ReportOptions{
		StageAnalysis:    boolOr(input.IncludeStageAnalysis, true),
		OwnerPerformance: boolOr(input.IncludeOwnerPerformance, true),
		IndustryTrends:   boolOr(input.IncludeIndustryTrends, true),
		PipelineHealth:   boolOr(input.IncludePipelineHealth, true),
		ConversionRates:  boolOr(input.IncludeConversionRates, true),
	}, now)
	if err != nil {
		return fail(err)
	}

	dateFilter := "All time"
	if len(dateConds) > 0 {
		dateFilter = strings.Join(dateConds, " AND ")
	}

	return envelope(InsightsOutput{
		Success:            true,
		Timeframe:          timeframe,
		TotalOpportunities: len(opps),
		DataRange: DataRange{
			DateFilter:   dateFilter,
			TotalRecords: len(opps),
			Filters:      filterSummary(input),
		},
		GeneratedAt: stamp(now),
		Report:      *report,
	})
}
