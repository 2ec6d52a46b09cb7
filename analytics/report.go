package analytics

import (
	"time"

	"github.com/harperreed/sfmcp/models"
)

// ReportOptions selects the optional sections of a Report.
type ReportOptions struct {
	StageAnalysis    bool
	OwnerPerformance bool
	IndustryTrends   bool
	PipelineHealth   bool
	ConversionRates  bool
}

func AllSections() ReportOptions {
	return ReportOptions{true, true, true, true, true}
}

type Report struct {
	CoreMetrics              CoreMetrics       `json:"coreMetrics"`
	StageAnalysis            *StageAnalysis    `json:"stageAnalysis,omitempty"`
	OwnerPerformance         *OwnerPerformance `json:"ownerPerformance,omitempty"`
	IndustryTrends           *IndustryTrends   `json:"industryTrends,omitempty"`
	PipelineHealth           *PipelineHealth   `json:"pipelineHealth,omitempty"`
	ConversionRates          *ConversionRates  `json:"conversionRates,omitempty"`
	StrategicRecommendations []Recommendation  `json:"strategicRecommendations"`
}

func BuildReport(opps []models.Opportunity, opts ReportOptions, now time.Time) (*Report, error) {
	r := &Report{CoreMetrics: ComputeCoreMetrics(opps)}
	env := StrategicEnv{WinRate: r.CoreMetrics.WinRate}

	if opts.StageAnalysis {
		s := AnalyzeStages(opps)
		r.StageAnalysis = &s
	}
	if opts.OwnerPerformance {
		p := AnalyzeOwners(opps)
		r.OwnerPerformance = &p
		env.HasOwners = true
		env.OwnerCount = len(p.Performers)
		env.AvgWinRate = p.AverageWinRate()
		if len(p.Performers) > 0 {
			env.TopOwner = p.Performers[0].Owner
			env.TopWinRate = p.Performers[0].WinRate
		}
	}
	if opts.IndustryTrends {
		t := AnalyzeIndustries(opps)
		r.IndustryTrends = &t
	}
	if opts.PipelineHealth {
		h := AssessPipeline(opps, now)
		r.PipelineHealth = &h
		env.HasPipeline = true
		env.OverdueCount = h.Categories.Overdue.Count
	}
	if opts.ConversionRates {
		c := ComputeConversionRates(opps)
		r.ConversionRates = &c
	}

	recs, err := StrategicRecommendations(env)
	if err != nil {
		return nil, err
	}
	r.StrategicRecommendations = recs
	return r, nil
}
