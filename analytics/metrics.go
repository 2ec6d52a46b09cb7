// ABOUTME: Rollups over a batch of opportunities: core metrics, stages, owners, industries, conversion
// ABOUTME: All functions are pure and total; empty input yields zero counts and rates
package analytics

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/harperreed/sfmcp/models"
)

type DealSummary struct {
	Count       int     `json:"count"`
	Value       float64 `json:"value"`
	AverageSize float64 `json:"averageSize"`
}

type LostSummary struct {
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

type CoreMetrics struct {
	TotalOpportunities int         `json:"totalOpportunities"`
	TotalValue         float64     `json:"totalValue"`
	AverageDealSize    float64     `json:"averageDealSize"`
	WonDeals           DealSummary `json:"wonDeals"`
	LostDeals          LostSummary `json:"lostDeals"`
	OpenPipeline       DealSummary `json:"openPipeline"`
	WinRate            int         `json:"winRate"`
}

func ComputeCoreMetrics(opps []models.Opportunity) CoreMetrics {
	var total, wonValue, openValue float64
	var won, lost, open int

	for _, o := range opps {
		amount := o.AmountOrZero()
		total += amount
		switch {
		case o.IsWon:
			won++
			wonValue += amount
		case o.IsLost():
			lost++
		default:
			open++
			openValue += amount
		}
	}

	return CoreMetrics{
		TotalOpportunities: len(opps),
		TotalValue:         total,
		AverageDealSize:    average(total, len(opps)),
		WonDeals:           DealSummary{Count: won, Value: wonValue, AverageSize: average(wonValue, won)},
		LostDeals:          LostSummary{Count: lost, Percentage: Rate(lost, len(opps))},
		OpenPipeline:       DealSummary{Count: open, Value: openValue, AverageSize: average(openValue, open)},
		WinRate:            Rate(won, won+lost),
	}
}

func labelOr(s string) string {
	if s == "" {
		return models.UnknownLabel
	}
	return s
}

type StageStats struct {
	Stage              string  `json:"stage"`
	Count              int     `json:"count"`
	Value              float64 `json:"value"`
	AverageSize        float64 `json:"averageSize"`
	AverageProbability float64 `json:"averageProbability"`
	Percentage         int     `json:"percentage"`
}

type StageAnalysis struct {
	Stages   []StageStats `json:"stages"`
	Insights []string     `json:"insights"`
}

// AnalyzeStages groups by stage and sorts by total value, largest first.
func AnalyzeStages(opps []models.Opportunity) StageAnalysis {
	type acc struct {
		count     int
		value     float64
		totalProb float64
	}
	groups := map[string]*acc{}
	var order []string

	for _, o := range opps {
		stage := labelOr(o.Stage)
		g, ok := groups[stage]
		if !ok {
			g = &acc{}
			groups[stage] = g
			order = append(order, stage)
		}
		g.count++
		g.value += o.AmountOrZero()
		g.totalProb += o.Probability
	}

	stages := make([]StageStats, 0, len(order))
	for _, name := range order {
		g := groups[name]
		stages = append(stages, StageStats{
			Stage:              name,
			Count:              g.count,
			Value:              g.value,
			AverageSize:        average(g.value, g.count),
			AverageProbability: average(g.totalProb, g.count),
			Percentage:         Rate(g.count, len(opps)),
		})
	}
	slices.SortStableFunc(stages, func(a, b StageStats) int { return cmp.Compare(b.Value, a.Value) })

	return StageAnalysis{Stages: stages, Insights: stageInsights(stages)}
}

func stageInsights(stages []StageStats) []string {
	insights := []string{}
	if len(stages) == 0 {
		return insights
	}
	top := stages[0]
	insights = append(insights, fmt.Sprintf("%s holds the most pipeline value ($%s across %d%% of opportunities)",
		top.Stage, humanize.Commaf(top.Value), top.Percentage))

	low := 0
	for _, s := range stages {
		if s.AverageProbability < 25 {
			low++
		}
	}
	if low > 0 {
		insights = append(insights, fmt.Sprintf("%d stages have low average probability (<25%%)", low))
	}
	return insights
}

type OwnerStats struct {
	Owner              string  `json:"owner"`
	TotalOpportunities int     `json:"totalOpportunities"`
	WonDeals           int     `json:"wonDeals"`
	LostDeals          int     `json:"lostDeals"`
	OpenDeals          int     `json:"openDeals"`
	WinRate            int     `json:"winRate"`
	TotalValue         float64 `json:"totalValue"`
	WonValue           float64 `json:"wonValue"`
	OpenValue          float64 `json:"openValue"`
	AverageDealSize    float64 `json:"averageDealSize"`
}

type OwnerPerformance struct {
	Performers []OwnerStats `json:"performers"`
	Insights   []string     `json:"insights"`
}

// AverageWinRate is the unweighted mean of per-owner win rates.
func (p OwnerPerformance) AverageWinRate() float64 {
	if len(p.Performers) == 0 {
		return 0
	}
	sum := 0
	for _, o := range p.Performers {
		sum += o.WinRate
	}
	return float64(sum) / float64(len(p.Performers))
}

// AnalyzeOwners groups by owner name and sorts by won value, largest first.
func AnalyzeOwners(opps []models.Opportunity) OwnerPerformance {
	groups := map[string]*OwnerStats{}
	var order []string

	for _, o := range opps {
		owner := labelOr(o.OwnerName)
		g, ok := groups[owner]
		if !ok {
			g = &OwnerStats{Owner: owner}
			groups[owner] = g
			order = append(order, owner)
		}
		amount := o.AmountOrZero()
		g.TotalOpportunities++
		g.TotalValue += amount
		switch {
		case o.IsWon:
			g.WonDeals++
			g.WonValue += amount
		case o.IsLost():
			g.LostDeals++
		default:
			g.OpenDeals++
			g.OpenValue += amount
		}
	}

	performers := make([]OwnerStats, 0, len(order))
	for _, name := range order {
		g := groups[name]
		g.WinRate = Rate(g.WonDeals, g.WonDeals+g.LostDeals)
		g.AverageDealSize = average(g.TotalValue, g.TotalOpportunities)
		performers = append(performers, *g)
	}
	slices.SortStableFunc(performers, func(a, b OwnerStats) int { return cmp.Compare(b.WonValue, a.WonValue) })

	perf := OwnerPerformance{Performers: performers, Insights: []string{}}
	if len(performers) > 0 {
		top := performers[0]
		perf.Insights = append(perf.Insights,
			fmt.Sprintf("%s leads with $%s in won deals", top.Owner, humanize.Commaf(top.WonValue)),
			fmt.Sprintf("Average team win rate: %.0f%%", perf.AverageWinRate()),
		)
	}
	return perf
}

type IndustryStats struct {
	Industry           string  `json:"industry"`
	TotalOpportunities int     `json:"totalOpportunities"`
	WonDeals           int     `json:"wonDeals"`
	WinRate            int     `json:"winRate"`
	TotalValue         float64 `json:"totalValue"`
	WonValue           float64 `json:"wonValue"`
	AverageDealSize    float64 `json:"averageDealSize"`
	MarketShare        int     `json:"marketShare"`
}

type IndustryTrends struct {
	Industries []IndustryStats `json:"industries"`
	Insights   []string        `json:"insights"`
}

// AnalyzeIndustries groups by account industry and sorts by total value.
// Win rate here is won over all deals in the segment, open ones included.
func AnalyzeIndustries(opps []models.Opportunity) IndustryTrends {
	groups := map[string]*IndustryStats{}
	var order []string

	for _, o := range opps {
		industry := labelOr(o.Industry)
		g, ok := groups[industry]
		if !ok {
			g = &IndustryStats{Industry: industry}
			groups[industry] = g
			order = append(order, industry)
		}
		g.TotalOpportunities++
		g.TotalValue += o.AmountOrZero()
		if o.IsWon {
			g.WonDeals++
			g.WonValue += o.AmountOrZero()
		}
	}

	industries := make([]IndustryStats, 0, len(order))
	for _, name := range order {
		g := groups[name]
		g.WinRate = Rate(g.WonDeals, g.TotalOpportunities)
		g.AverageDealSize = average(g.TotalValue, g.TotalOpportunities)
		g.MarketShare = Rate(g.TotalOpportunities, len(opps))
		industries = append(industries, *g)
	}
	slices.SortStableFunc(industries, func(a, b IndustryStats) int { return cmp.Compare(b.TotalValue, a.TotalValue) })

	trends := IndustryTrends{Industries: industries, Insights: []string{}}
	if len(industries) > 0 {
		top := industries[0]
		trends.Insights = append(trends.Insights,
			fmt.Sprintf("%s is the largest segment (%d%% of deals)", top.Industry, top.MarketShare))
		strong := 0
		for _, i := range industries {
			if i.WinRate > 50 {
				strong++
			}
		}
		if strong > 0 {
			trends.Insights = append(trends.Insights, fmt.Sprintf("%d industries have >50%% win rates", strong))
		}
	}
	return trends
}

type StageConversion struct {
	Stage          string `json:"stage"`
	Entered        int    `json:"entered"`
	Converted      int    `json:"converted"`
	ConversionRate int    `json:"conversionRate"`
}

type ConversionRates struct {
	StageConversions      []StageConversion `json:"stageConversions"`
	OverallConversionRate int               `json:"overallConversionRate"`
}

// ComputeConversionRates treats every record in a stage as having entered it
// and the won ones as converted. Sorted by rate, highest first.
func ComputeConversionRates(opps []models.Opportunity) ConversionRates {
	groups := map[string]*StageConversion{}
	var order []string
	won := 0

	for _, o := range opps {
		stage := labelOr(o.Stage)
		g, ok := groups[stage]
		if !ok {
			g = &StageConversion{Stage: stage}
			groups[stage] = g
			order = append(order, stage)
		}
		g.Entered++
		if o.IsWon {
			g.Converted++
			won++
		}
	}

	conversions := make([]StageConversion, 0, len(order))
	for _, name := range order {
		g := groups[name]
		g.ConversionRate = Rate(g.Converted, g.Entered)
		conversions = append(conversions, *g)
	}
	slices.SortStableFunc(conversions, func(a, b StageConversion) int { return b.ConversionRate - a.ConversionRate })

	return ConversionRates{StageConversions: conversions, OverallConversionRate: Rate(won, len(opps))}
}
