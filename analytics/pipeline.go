package analytics

import (
	"math"
	"time"

	"github.com/harperreed/sfmcp/models"
)

type PipelineBucket struct {
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

func (b *PipelineBucket) add(o models.Opportunity) {
	b.Count++
	b.Value += o.AmountOrZero()
}

type PipelineCategories struct {
	Overdue   PipelineBucket `json:"overdue"`
	ThisMonth PipelineBucket `json:"thisMonth"`
	NextMonth PipelineBucket `json:"nextMonth"`
	Future    PipelineBucket `json:"future"`
}

type PipelineHealth struct {
	TotalOpenOpportunities int                `json:"totalOpenOpportunities"`
	TotalOpenValue         float64            `json:"totalOpenValue"`
	Categories             PipelineCategories `json:"categories"`
	HealthScore            int                `json:"healthScore"`
}

// AssessPipeline buckets open opportunities by close date relative to now.
// Dates before today (UTC) are overdue; open records without a close date
// count toward the total but land in no bucket.
func AssessPipeline(opps []models.Opportunity, now time.Time) PipelineHealth {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	nextMonth := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	monthAfter := time.Date(now.Year(), now.Month()+2, 1, 0, 0, 0, 0, time.UTC)

	var health PipelineHealth
	for _, o := range opps {
		if o.IsClosed {
			continue
		}
		health.TotalOpenOpportunities++
		health.TotalOpenValue += o.AmountOrZero()

		if o.CloseDate == nil {
			continue
		}
		closeDate := o.CloseDate.UTC()
		switch {
		case closeDate.Before(today):
			health.Categories.Overdue.add(o)
		case closeDate.Before(nextMonth):
			health.Categories.ThisMonth.add(o)
		case closeDate.Before(monthAfter):
			health.Categories.NextMonth.add(o)
		default:
			health.Categories.Future.add(o)
		}
	}

	health.HealthScore = HealthScore(health.Categories.Overdue.Count, health.Categories.ThisMonth.Count, health.TotalOpenOpportunities)
	return health
}

// HealthScore starts at 100, loses up to 30 for overdue share and gains up
// to 10 for this-month share, clamped to [0,100]. No open records scores 100.
func HealthScore(overdue, thisMonth, totalOpen int) int {
	if totalOpen == 0 {
		return 100
	}
	score := 100.0
	score -= float64(overdue) / float64(totalOpen) * 30
	score += float64(thisMonth) / float64(totalOpen) * 10
	return int(max(0, min(100, math.Round(score))))
}
