package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/harperreed/sfmcp/models"
	"github.com/harperreed/sfmcp/query"
	"github.com/harperreed/sfmcp/salesforce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpportunityHandlers(t *testing.T) (*OpportunityHandlers, *salesforce.FakeBackend) {
	t.Helper()
	client, fake := salesforce.NewTestClient(context.Background())
	h := NewOpportunityHandlers(client, query.MatchBoundary)
	h.now = fixedClock
	return h, fake
}

func TestAnalyzeEngagementHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		h, fake := newOpportunityHandlers(t)
		fake.Respond("FROM Task",
			taskRow("[Gong Out] Proposal follow-up", "Email", "2025-05-13T09:00:00.000+0000"),
			taskRow("[Gong In] Re: pricing", "Email", "2025-05-12T09:00:00.000+0000"),
			taskRow("[Gong] Discovery call", "Call", "2025-05-10T09:00:00.000+0000"),
		)

		res, _, err := h.AnalyzeEngagement(ctx, nil, AnalyzeEngagementInput{RecordID: "006A"})
		require.NoError(t, err)
		assert.Contains(t, fake.LastQuery(), "WhatId = '006A'")

		var out EngagementOutput
		decode(t, res, &out)
		assert.True(t, out.Success)
		assert.Equal(t, "006A", out.RecordID)
		assert.Equal(t, "2025-05-15T12:00:00Z", out.AnalysisDate)
		require.NotNil(t, out.Insights)
		assert.Equal(t, 3, out.Insights.TotalActivities)
		assert.Equal(t, 1, out.Insights.Calls)
		assert.Equal(t, 1, out.Insights.EmailExchanges.Inbound)
		assert.Equal(t, 1, out.Insights.EmailExchanges.Outbound)
		assert.Equal(t, []string{"Discovery call"}, out.Insights.CallTopics)
		assert.Equal(t, []string{"Sam Okafor"}, out.Insights.KeyContacts)
	})

	t.Run("backend failure becomes failure envelope", func(t *testing.T) {
		h, fake := newOpportunityHandlers(t)
		fake.Fail("FROM Task", errors.New("REQUEST_LIMIT_EXCEEDED"))

		res, _, err := h.AnalyzeEngagement(ctx, nil, AnalyzeEngagementInput{RecordID: "006A"})
		require.NoError(t, err)

		body := decodeMap(t, res)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["error"], "REQUEST_LIMIT_EXCEEDED")
		assert.Equal(t, "006A", body["recordId"])
		assert.Equal(t, "2025-05-15T12:00:00Z", body["analysisDate"])
	})
}

func TestEnrichRecordHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("compares against won deals in the amount band", func(t *testing.T) {
		h, fake := newOpportunityHandlers(t)
		fake.Respond("IsWon = true",
			oppRow("006W1", "Alpha", 90000, "Closed Won", "Technology"),
			oppRow("006W2", "Beta", 150000, "Closed Won", "Technology"),
		)
		fake.Respond("Id = '006A'", oppRow("006A", "Github Migration", 100000, "Proposal", "Technology"))

		res, _, err := h.EnrichRecord(ctx, nil, EnrichRecordInput{RecordID: "006A"})
		require.NoError(t, err)

		soql := fake.LastQuery()
		assert.Contains(t, soql, "Amount >= 40000 AND Amount <= 300000")
		assert.Contains(t, soql, "Id != '006A'")

		body := decodeMap(t, res)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "006A", body["recordId"])
		assert.Equal(t, "2025-05-15T12:00:00Z", body["enrichmentDate"])
		assert.Nil(t, body["competitiveIntelligence"])

		market, ok := body["marketIntelligence"].(map[string]any)
		require.True(t, ok, "marketIntelligence: %#v", body["marketIntelligence"])
		assert.EqualValues(t, 2, market["similarDealsAnalyzed"])
		assert.EqualValues(t, 120000, market["averageDealSize"])

		profile, ok := body["opportunityProfile"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Github Migration", profile["name"])
	})

	t.Run("unknown record", func(t *testing.T) {
		h, fake := newOpportunityHandlers(t)
		fake.Respond("Id = '006X'")

		res, _, err := h.EnrichRecord(ctx, nil, EnrichRecordInput{RecordID: "006X"})
		require.NoError(t, err)

		body := decodeMap(t, res)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["error"], "006X")
		assert.Contains(t, body, "enrichmentDate")
	})
}

func TestFindSimilarRecordsHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("criteria derived from the reference", func(t *testing.T) {
		h, fake := newOpportunityHandlers(t)
		fake.Respond("Id = '006A'", oppRow("006A", "Github Migration", 100000, "Proposal", "Technology"))
		fake.DefaultRecords = []models.Record{
			oppRow("006B", "Gitlab Rollout", 110000, "Closed Won", "Technology"),
			oppRow("006C", "CI Upgrade", 40000, "Closed Lost", "Technology"),
		}

		res, _, err := h.FindSimilarRecords(ctx, nil, FindSimilarRecordsInput{ReferenceRecordID: "006A"})
		require.NoError(t, err)

		soql := fake.LastQuery()
		assert.Contains(t, soql, "Account.Industry = 'Technology'")
		assert.Contains(t, soql, "Amount >= 30000")
		assert.Contains(t, soql, "Amount <= 300000")
		assert.Contains(t, soql, "LIMIT 50")

		var out SimilarOutput
		decode(t, res, &out)
		assert.True(t, out.Success)
		require.NotNil(t, out.ReferenceRecord)
		assert.Equal(t, "006A", out.ReferenceRecord.ID)
		assert.Equal(t, "Technology", out.SearchCriteria.Industry)
		assert.Equal(t, 2, out.Results.TotalFound)
		require.Len(t, out.Results.Records, 2)
		for _, r := range out.Results.Records {
			assert.GreaterOrEqual(t, r.Similarity, 0)
			assert.LessOrEqual(t, r.Similarity, 100)
		}
		assert.NotNil(t, out.Analysis)
		assert.Equal(t, "2025-05-15T12:00:00Z", out.SearchDate)
	})

	t.Run("unknown reference falls back to explicit criteria", func(t *testing.T) {
		h, fake := newOpportunityHandlers(t)
		fake.Respond("Id = '006Z'")

		res, _, err := h.FindSimilarRecords(ctx, nil, FindSimilarRecordsInput{
			ReferenceRecordID: "006Z",
			Industry:          "Retail",
			IncludeAnalysis:   ptr(false),
			Limit:             ptr(5),
		})
		require.NoError(t, err)

		soql := fake.LastQuery()
		assert.Contains(t, soql, "Account.Industry = 'Retail'")
		assert.NotContains(t, soql, "Amount >=")
		assert.Contains(t, soql, "LIMIT 5")

		var out SimilarOutput
		decode(t, res, &out)
		assert.True(t, out.Success)
		assert.Nil(t, out.ReferenceRecord)
		assert.Nil(t, out.Analysis)
	})

	t.Run("backend failure", func(t *testing.T) {
		h, fake := newOpportunityHandlers(t)
		fake.Fail("Id = '006E'", errors.New("SERVER_UNAVAILABLE"))

		res, _, err := h.FindSimilarRecords(ctx, nil, FindSimilarRecordsInput{ReferenceRecordID: "006E"})
		require.NoError(t, err)

		body := decodeMap(t, res)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["error"], "SERVER_UNAVAILABLE")
		assert.Equal(t, "2025-05-15T12:00:00Z", body["searchDate"])
	})
}

func TestRecordInsightsHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to the current quarter", func(t *testing.T) {
		h, fake := newOpportunityHandlers(t)
		fake.DefaultRecords = []models.Record{
			oppRow("006A", "Alpha", 100000, "Closed Won", "Technology"),
			oppRow("006B", "Beta", 50000, "Proposal", "Retail"),
			oppRow("006C", "Gamma", 25000, "Closed Lost", "Retail"),
		}

		res, _, err := h.RecordInsights(ctx, nil, RecordInsightsInput{IncludeOwnerPerformance: ptr(false)})
		require.NoError(t, err)

		soql := fake.LastQuery()
		assert.Contains(t, soql, "CloseDate >= 2025-04-01")
		assert.Contains(t, soql, "LIMIT 1000")

		body := decodeMap(t, res)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "current_quarter", body["timeframe"])
		assert.EqualValues(t, 3, body["totalOpportunities"])
		assert.Equal(t, "2025-05-15T12:00:00Z", body["generatedAt"])
		assert.Contains(t, body, "coreMetrics")
		assert.Contains(t, body, "stageAnalysis")
		assert.NotContains(t, body, "ownerPerformance")

		dataRange, ok := body["dataRange"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "CloseDate >= 2025-04-01", dataRange["dateFilter"])
		assert.Equal(t, []any{"No additional filters"}, dataRange["filters"])
	})

	t.Run("all time with filters", func(t *testing.T) {
		h, fake := newOpportunityHandlers(t)

		res, _, err := h.RecordInsights(ctx, nil, RecordInsightsInput{
			Timeframe: "all_time",
			MinAmount: ptr(5000.0),
			Owner:     "Dana Reyes",
		})
		require.NoError(t, err)

		soql := fake.LastQuery()
		assert.NotContains(t, soql, "CloseDate >=")
		assert.Contains(t, soql, "Owner.Name = 'Dana Reyes'")

		body := decodeMap(t, res)
		dataRange := body["dataRange"].(map[string]any)
		assert.Equal(t, "All time", dataRange["dateFilter"])
		assert.Equal(t, []any{"Min Amount: $5,000", "Owner: Dana Reyes"}, dataRange["filters"])
	})

	t.Run("backend failure", func(t *testing.T) {
		h, fake := newOpportunityHandlers(t)
		fake.Fail("FROM Opportunity", errors.New("INVALID_SESSION_ID"))

		res, _, err := h.RecordInsights(ctx, nil, RecordInsightsInput{})
		require.NoError(t, err)

		body := decodeMap(t, res)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body, "generatedAt")
	})
}

func TestGenerateDocumentOutline(t *testing.T) {
	h := NewDocumentHandlers()

	res, _, err := h.GenerateDocumentOutline(context.Background(), nil, GenerateDocumentOutlineInput{RecordID: "006A", ClientName: "Acme"})
	require.NoError(t, err)

	var out DocumentOutline
	decode(t, res, &out)
	assert.True(t, out.Success)
	assert.Equal(t, "pdf", out.OutputFormat)
	require.Len(t, out.DataGathering, 4)
	assert.Equal(t, "get_record_details", out.DataGathering[0].Action)
	assert.Equal(t, "find_similar_records", out.DataGathering[3].Action)
	assert.Contains(t, out.DataGathering[2].Params["query"], "WHERE OpportunityId = '006A'")
	assert.Equal(t, "business_case_006A.pdf", out.Export.Params["output_path"])
	assert.Contains(t, out.Template, "# Business Case: [Opportunity Name]")
}
