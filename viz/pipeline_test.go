package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/sfmcp/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(v float64) *float64 { return &v }

func sampleOpportunities() []models.Opportunity {
	closeDate := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	return []models.Opportunity{
		{Stage: "Negotiation", Amount: amount(1000), IsWon: true, IsClosed: true},
		{Stage: "Negotiation", Amount: amount(500), CloseDate: &closeDate},
		{Stage: "Prospecting", Amount: amount(100)},
	}
}

func TestGeneratePipelineGraph(t *testing.T) {
	g, err := GeneratePipelineGraph(context.Background(), sampleOpportunities(), "Q1 pipeline")
	require.NoError(t, err)

	assert.Equal(t, 3, g.Nodes)
	assert.Equal(t, 1, g.Edges)
	assert.Contains(t, g.DOT, "Negotiation")
	assert.Contains(t, g.DOT, "Prospecting")
	assert.Contains(t, g.DOT, "50%")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(g.DOT), "digraph"))
}

func TestGeneratePipelineGraphWithoutWins(t *testing.T) {
	g, err := GeneratePipelineGraph(context.Background(), []models.Opportunity{{Stage: "Prospecting"}}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, g.Nodes)
	assert.Zero(t, g.Edges)
	assert.NotContains(t, g.DOT, "Won")
}

func TestDashboardRender(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	out := NewDashboard(sampleOpportunities(), now).Render()

	assert.Contains(t, out, "PIPELINE DASHBOARD")
	assert.Contains(t, out, "Negotiation      ██████████    2 ($1,500)")
	assert.Contains(t, out, "Prospecting      █████░░░░░    1 ($100)")
	assert.Contains(t, out, "3 opportunities  $1,600 total  100% win rate")
	assert.Contains(t, out, "overdue 1  this month 0  next month 0  later 0")
	assert.Contains(t, out, "health score 85/100")
}
