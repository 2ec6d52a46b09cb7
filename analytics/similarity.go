// ABOUTME: Similarity scoring against a reference opportunity and pattern analysis of a result set
// ABOUTME: Derives search criteria from a reference when the caller supplies one
package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/harperreed/sfmcp/models"
	"github.com/harperreed/sfmcp/query"
)

// Factor weights. They sum to 100 and all count toward the denominator.
const (
	weightIndustry   = 30
	weightAmount     = 25
	weightStage      = 20
	weightType       = 15
	weightLeadSource = 10
)

// Similarity scores candidate against reference from 0 to 100. Missing text
// fields compare equal to each other. The amount factor only contributes when
// both amounts are present and non-zero.
func Similarity(candidate models.Opportunity, reference *models.Opportunity) int {
	if reference == nil {
		return 0
	}
	score, weights := 0.0, 0.0

	if candidate.Industry == reference.Industry {
		score += weightIndustry
	}
	weights += weightIndustry

	if ratio, ok := amountRatio(candidate.Amount, reference.Amount); ok {
		score += ratio * weightAmount
	}
	weights += weightAmount

	if candidate.Stage == reference.Stage {
		score += weightStage
	}
	weights += weightStage

	if candidate.Type == reference.Type {
		score += weightType
	}
	weights += weightType

	if candidate.LeadSource == reference.LeadSource {
		score += weightLeadSource
	}
	weights += weightLeadSource

	return int(math.Round(score / weights * 100))
}

func amountRatio(a, b *float64) (float64, bool) {
	if a == nil || b == nil || *a == 0 || *b == 0 {
		return 0, false
	}
	lo, hi := math.Abs(*a), math.Abs(*b)
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo / hi, true
}

// DeriveCriteria fills in search criteria from a reference opportunity:
// its industry, an amount band of 0.3x to 3x its amount, and its type.
// Explicitly supplied criteria always win over derived ones.
func DeriveCriteria(explicit query.SimilarCriteria, reference *models.Opportunity) query.SimilarCriteria {
	c := explicit
	if reference == nil {
		return c
	}
	if c.Industry == "" {
		c.Industry = reference.Industry
	}
	if reference.Amount != nil && *reference.Amount > 0 {
		if c.MinAmount == nil {
			lo := math.Floor(*reference.Amount * 0.3)
			c.MinAmount = &lo
		}
		if c.MaxAmount == nil {
			hi := math.Ceil(*reference.Amount * 3)
			c.MaxAmount = &hi
		}
	}
	if c.Type == "" {
		c.Type = reference.Type
	}
	return c
}

type PatternSummary struct {
	TotalOpportunities int     `json:"totalOpportunities"`
	AverageDealSize    float64 `json:"averageDealSize"`
	WinRate            int     `json:"winRate"`
	AverageProbability float64 `json:"averageProbability"`
}

type Patterns struct {
	TopIndustries  []Share `json:"topIndustries"`
	TopStages      []Share `json:"topStages"`
	TopLeadSources []Share `json:"topLeadSources"`
	TopOwners      []Share `json:"topOwners"`
}

type PatternInsight struct {
	Type           string `json:"type"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

type PatternAnalysis struct {
	Message  string           `json:"message,omitempty"`
	Summary  *PatternSummary  `json:"summary,omitempty"`
	Patterns *Patterns        `json:"patterns,omitempty"`
	Insights []PatternInsight `json:"insights,omitempty"`
}

// recentWindow is how far back a close date still counts as recent activity.
const recentWindow = 6

func isRecent(t *time.Time, now time.Time) bool {
	return t != nil && t.After(now.AddDate(0, -recentWindow, 0))
}

// AnalyzePatterns summarizes the distribution of a similar-deal result set.
// Averages only consider records that carry the value.
func AnalyzePatterns(opps []models.Opportunity, reference *models.Opportunity, now time.Time) PatternAnalysis {
	if len(opps) == 0 {
		return PatternAnalysis{Message: "No opportunities found for analysis"}
	}

	industries, stages, sources, owners := newTally(), newTally(), newTally(), newTally()
	var totalValue, totalProb float64
	var amounts, probs, won, recent int

	for _, o := range opps {
		industries.add(o.Industry)
		stages.add(o.Stage)
		sources.add(o.LeadSource)
		owners.add(o.OwnerName)
		if o.Amount != nil && *o.Amount != 0 {
			totalValue += *o.Amount
			amounts++
		}
		if o.Probability != 0 {
			totalProb += o.Probability
			probs++
		}
		if o.IsWon {
			won++
		}
		if isRecent(o.CloseDate, now) {
			recent++
		}
	}

	n := len(opps)
	avgDeal := 0.0
	if amounts > 0 {
		avgDeal = totalValue / float64(amounts)
	}
	winRate := float64(won) / float64(n) * 100

	return PatternAnalysis{
		Summary: &PatternSummary{
			TotalOpportunities: n,
			AverageDealSize:    math.Round(avgDeal),
			WinRate:            int(math.Round(winRate)),
			AverageProbability: average(totalProb, probs),
		},
		Patterns: &Patterns{
			TopIndustries:  industries.top(5, n),
			TopStages:      stages.top(5, n),
			TopLeadSources: sources.top(3, n),
			TopOwners:      owners.top(5, n),
		},
		Insights: patternInsights(reference, avgDeal, winRate, recent, n),
	}
}

func patternInsights(reference *models.Opportunity, avgDeal, winRate float64, recent, total int) []PatternInsight {
	insights := []PatternInsight{}

	if reference != nil && reference.Amount != nil && *reference.Amount != 0 && avgDeal > 0 {
		ratio := *reference.Amount / avgDeal
		switch {
		case ratio > 1.5:
			insights = append(insights, PatternInsight{
				Type:           "dealSize",
				Message:        fmt.Sprintf("Reference opportunity is %.0f%% of the similar-deal average", ratio*100),
				Recommendation: "Position a premium value proposition to justify the higher investment",
			})
		case ratio < 0.7:
			insights = append(insights, PatternInsight{
				Type:           "dealSize",
				Message:        "Reference opportunity is smaller than the similar-deal average",
				Recommendation: "Focus on efficiency and quick wins, or explore expansion opportunities",
			})
		}
	}

	switch {
	case winRate > 70:
		insights = append(insights, PatternInsight{
			Type:           "winRate",
			Message:        fmt.Sprintf("High win rate (%.0f%%) in this segment indicates strong market fit", winRate),
			Recommendation: "Lean on success stories and case studies from similar clients",
		})
	case winRate < 30:
		insights = append(insights, PatternInsight{
			Type:           "winRate",
			Message:        fmt.Sprintf("Lower win rate (%.0f%%) suggests a competitive or challenging market", winRate),
			Recommendation: "Focus on differentiation and a unique value proposition",
		})
	}

	if float64(recent) > float64(total)*0.6 {
		insights = append(insights, PatternInsight{
			Type:           "timing",
			Message:        "High recent activity indicates growing market demand",
			Recommendation: "Move quickly to capitalize on market momentum",
		})
	}
	return insights
}
