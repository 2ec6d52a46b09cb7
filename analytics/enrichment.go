// ABOUTME: Enrichment of a single opportunity against a band of comparable won deals
// ABOUTME: Produces market intelligence, strategic insights, best practices and competitive intel
package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/harperreed/sfmcp/models"
)

const (
	// DefaultEnrichmentAmount stands in for a missing amount when picking the comparison band.
	DefaultEnrichmentAmount = 25000
	minimumBandFloor        = 10000
	// ComparableLimit caps how many won deals are compared.
	ComparableLimit = 25
)

// ComparableBand returns the amount range of won deals worth comparing:
// [max(10000, 0.4*amount), 3*amount].
func ComparableBand(amount *float64) (lo, hi float64) {
	a := float64(DefaultEnrichmentAmount)
	if amount != nil && *amount != 0 {
		a = *amount
	}
	return math.Max(minimumBandFloor, a*0.4), a * 3
}

type AccountProfile struct {
	Name      string   `json:"name,omitempty"`
	Industry  string   `json:"industry,omitempty"`
	Website   string   `json:"website,omitempty"`
	Employees *float64 `json:"employees,omitempty"`
}

type Profile struct {
	Name        string         `json:"name"`
	Amount      *float64       `json:"amount"`
	Stage       string         `json:"stage"`
	Probability float64        `json:"probability"`
	Account     AccountProfile `json:"account"`
}

type MarketIntelligence struct {
	SimilarDealsAnalyzed     int     `json:"similarDealsAnalyzed"`
	AverageDealSize          float64 `json:"averageDealSize"`
	MarketProbabilityAverage float64 `json:"marketProbabilityAverage"`
	TopIndustries            []Share `json:"topIndustries"`
	TopLeadSources           []Share `json:"topLeadSources"`
}

type EnrichmentInsight struct {
	Type           string `json:"type"`
	Insight        string `json:"insight"`
	Recommendation string `json:"recommendation"`
	Impact         string `json:"impact"`
}

type BestPractice struct {
	Category  string `json:"category"`
	Practice  string `json:"practice"`
	Rationale string `json:"rationale"`
}

type MarketActivity struct {
	RecentSimilarDeals int    `json:"recentSimilarDeals"`
	AverageTimeframe   string `json:"averageTimeframe"`
	CompetitiveSignals string `json:"competitiveSignals"`
}

type CompetitiveIntel struct {
	MarketActivity        MarketActivity `json:"marketActivity"`
	PositioningAdvantages []string       `json:"positioningAdvantages"`
}

type Enrichment struct {
	Profile                 Profile             `json:"opportunityProfile"`
	MarketIntelligence      MarketIntelligence  `json:"marketIntelligence"`
	StrategicInsights       []EnrichmentInsight `json:"strategicInsights"`
	BestPractices           []BestPractice      `json:"bestPractices"`
	CompetitiveIntelligence *CompetitiveIntel   `json:"competitiveIntelligence"`
}

type EnrichOptions struct {
	BestPractices    bool
	CompetitiveIntel bool
}

// Enrich compares opp with comparable won deals. Averages divide by the
// number of comparables, so deals without an amount pull the average down.
func Enrich(opp models.Opportunity, comparables []models.Opportunity, opts EnrichOptions, now time.Time) Enrichment {
	industries, sources := newTally(), newTally()
	var totalValue, totalProb float64
	for _, c := range comparables {
		industries.add(c.Industry)
		sources.add(c.LeadSource)
		totalValue += c.AmountOrZero()
		totalProb += c.Probability
	}

	avgDeal := 0.0
	avgProb := 0.0
	if len(comparables) > 0 {
		avgDeal = totalValue / float64(len(comparables))
		avgProb = totalProb / float64(len(comparables))
	}

	e := Enrichment{
		Profile: Profile{
			Name:        opp.Name,
			Amount:      opp.Amount,
			Stage:       opp.Stage,
			Probability: opp.Probability,
			Account: AccountProfile{
				Name:      opp.AccountName,
				Industry:  opp.Industry,
				Website:   opp.Website,
				Employees: opp.Employees,
			},
		},
		MarketIntelligence: MarketIntelligence{
			SimilarDealsAnalyzed:     len(comparables),
			AverageDealSize:          math.Round(avgDeal),
			MarketProbabilityAverage: math.Round(avgProb),
			TopIndustries:            industries.top(5, len(comparables)),
			TopLeadSources:           sources.top(3, len(comparables)),
		},
		StrategicInsights: enrichmentInsights(opp, industries, sources, avgDeal),
		BestPractices:     []BestPractice{},
	}
	if opts.BestPractices {
		e.BestPractices = BestPractices(opp)
	}
	if opts.CompetitiveIntel {
		e.CompetitiveIntelligence = competitiveIntel(comparables, now)
	}
	return e
}

func enrichmentInsights(opp models.Opportunity, industries, sources *tally, avgDeal float64) []EnrichmentInsight {
	insights := []EnrichmentInsight{}

	if opp.Amount != nil && *opp.Amount != 0 && avgDeal > 0 {
		ratio := *opp.Amount / avgDeal
		switch {
		case ratio > 1.5:
			insights = append(insights, EnrichmentInsight{
				Type:           "dealSize",
				Insight:        fmt.Sprintf("This opportunity is %.0f%% of the similar-deal average ($%s)", ratio*100, humanize.Commaf(math.Round(avgDeal))),
				Recommendation: "Position premium services or expand scope to justify the higher investment",
				Impact:         "high",
			})
		case ratio < 0.7:
			insights = append(insights, EnrichmentInsight{
				Type:           "dealSize",
				Insight:        fmt.Sprintf("This opportunity is %.0f%% smaller than similar deals", (1-ratio)*100),
				Recommendation: "Focus on quick wins and efficiency, or explore expansion opportunities",
				Impact:         "medium",
			})
		}
	}

	if count := industries.counts[opp.Industry]; opp.Industry != "" && count > 0 {
		total := industries.total()
		share := Rate(count, total)
		impact := "medium"
		if share > 30 {
			impact = "high"
		}
		insights = append(insights, EnrichmentInsight{
			Type:           "industry",
			Insight:        fmt.Sprintf("%d%% of similar won deals are in %s (%d of %d deals)", share, opp.Industry, count, total),
			Recommendation: fmt.Sprintf("Use case studies and success stories from %s companies", opp.Industry),
			Impact:         impact,
		})
	}

	if opp.Stage == "Initiate" && opp.Probability <= 20 {
		insights = append(insights, EnrichmentInsight{
			Type:           "stage",
			Insight:        "Early stage opportunity with high potential based on similar deal patterns",
			Recommendation: "Focus on discovery and value demonstration to advance to qualification",
			Impact:         "high",
		})
	}

	if count := sources.counts[opp.LeadSource]; opp.LeadSource != "" && count > 0 {
		insights = append(insights, EnrichmentInsight{
			Type:           "leadSource",
			Insight:        fmt.Sprintf("%d similar deals originated from %s", count, opp.LeadSource),
			Recommendation: "Apply the tactics that have worked for this lead source",
			Impact:         "medium",
		})
	}
	return insights
}

// DefaultIndustry is assumed for best practices when the account has none.
const DefaultIndustry = "Technology Services"

func BestPractices(opp models.Opportunity) []BestPractice {
	industry := opp.Industry
	if industry == "" {
		industry = DefaultIndustry
	}
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(industry, w) {
				return true
			}
		}
		return false
	}

	practices := []BestPractice{}
	if has("Technology", "Software") {
		practices = append(practices,
			BestPractice{
				Category:  "Technical Positioning",
				Practice:  "Emphasize delivery practices that improve development velocity",
				Rationale: "Technology buyers respond to proven methods with measurable engineering outcomes",
			},
			BestPractice{
				Category:  "Stakeholder Engagement",
				Practice:  "Involve engineering leadership early in the process",
				Rationale: "Technical decision makers need to validate the architecture and implementation approach",
			})
	}
	if has("Financial", "Banking") {
		practices = append(practices, BestPractice{
			Category:  "Compliance Focus",
			Practice:  "Highlight regulatory compliance and risk management benefits",
			Rationale: "Financial services prioritize governance and audit trails",
		})
	}
	if has("Healthcare", "Medical") {
		practices = append(practices, BestPractice{
			Category:  "Security Emphasis",
			Practice:  "Lead with data security and patient privacy compliance",
			Rationale: "Healthcare organizations require strong controls around patient data",
		})
	}
	if opp.Amount != nil && *opp.Amount > 50000 {
		practices = append(practices, BestPractice{
			Category:  "Executive Engagement",
			Practice:  "Schedule an executive briefing with an ROI presentation",
			Rationale: "Larger investments need executive approval and a business case",
		})
	}
	practices = append(practices, BestPractice{
		Category:  "Proof of Value",
		Practice:  "Propose a pilot or proof of concept",
		Rationale: "A pilot demonstrates value and lowers perceived risk",
	})
	return practices
}

func competitiveIntel(comparables []models.Opportunity, now time.Time) *CompetitiveIntel {
	recent := 0
	for _, c := range comparables {
		if isRecent(c.CloseDate, now) {
			recent++
		}
	}
	signal := "Moderate market activity"
	if recent > 5 {
		signal = "High market activity, expect competitive pressure"
	}
	return &CompetitiveIntel{
		MarketActivity: MarketActivity{
			RecentSimilarDeals: recent,
			AverageTimeframe:   "Based on recent deal velocity, typical sales cycle is 45-90 days",
			CompetitiveSignals: signal,
		},
		PositioningAdvantages: []string{
			"Track record with similar-sized organizations in this segment",
			"Structured assessment up front lowers implementation risk",
			"Ongoing enablement after rollout rather than one-off training",
		},
	}
}
