// ABOUTME: Terminal pipeline dashboard rendering
// ABOUTME: ASCII stage bars plus pipeline timing buckets and health score
package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/harperreed/sfmcp/analytics"
	"github.com/harperreed/sfmcp/models"
)

const barWidth = 10

type Dashboard struct {
	Stages   []analytics.StageStats
	Pipeline analytics.PipelineHealth
	Core     analytics.CoreMetrics
}

func NewDashboard(opps []models.Opportunity, now time.Time) Dashboard {
	return Dashboard{
		Stages:   analytics.AnalyzeStages(opps).Stages,
		Pipeline: analytics.AssessPipeline(opps, now),
		Core:     analytics.ComputeCoreMetrics(opps),
	}
}

func (d Dashboard) Render() string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  PIPELINE DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("STAGES\n")
	renderStages(&out, d.Stages)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	fmt.Fprintf(&out, "  %d opportunities  $%s total  %d%% win rate\n\n",
		d.Core.TotalOpportunities, humanize.Commaf(d.Core.TotalValue), d.Core.WinRate)

	c := d.Pipeline.Categories
	out.WriteString("OPEN PIPELINE\n")
	fmt.Fprintf(&out, "  overdue %d  this month %d  next month %d  later %d\n",
		c.Overdue.Count, c.ThisMonth.Count, c.NextMonth.Count, c.Future.Count)
	fmt.Fprintf(&out, "  health score %d/100\n", d.Pipeline.HealthScore)

	return out.String()
}

// renderStages draws one bar per stage scaled to the busiest stage.
func renderStages(out *strings.Builder, stages []analytics.StageStats) {
	maxCount := 1
	for _, s := range stages {
		maxCount = max(maxCount, s.Count)
	}

	for _, s := range stages {
		n := s.Count * barWidth / maxCount
		bar := strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
		fmt.Fprintf(out, "  %-16s %s  %3d ($%s)\n", s.Stage, bar, s.Count, humanize.Commaf(s.Value))
	}
}
