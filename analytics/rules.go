// ABOUTME: Ordered threshold rule sets evaluated with compiled expr conditions
// ABOUTME: Strategic rules for pipeline insights and engagement rules for activity analysis
package analytics

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Rule pairs a boolean condition over an environment E with the result it
// emits when the condition holds.
type Rule[E, R any] struct {
	Name      string
	Condition string
	Emit      func(E) R
}

type compiledRule[E, R any] struct {
	Rule[E, R]
	program *vm.Program
}

// RuleSet evaluates its rules in declaration order. Rules are independent;
// any number may fire.
type RuleSet[E, R any] struct {
	rules []compiledRule[E, R]
}

func NewRuleSet[E, R any](rules ...Rule[E, R]) (*RuleSet[E, R], error) {
	var zero E
	rs := &RuleSet[E, R]{}
	for _, r := range rules {
		program, err := expr.Compile(r.Condition, expr.Env(zero), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		rs.rules = append(rs.rules, compiledRule[E, R]{Rule: r, program: program})
	}
	return rs, nil
}

func mustRuleSet[E, R any](rules ...Rule[E, R]) *RuleSet[E, R] {
	rs, err := NewRuleSet(rules...)
	if err != nil {
		panic(err)
	}
	return rs
}

func (rs *RuleSet[E, R]) Evaluate(env E) ([]R, error) {
	out := []R{}
	for _, r := range rs.rules {
		fired, err := expr.Run(r.program, env)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		if fired.(bool) {
			out = append(out, r.Emit(env))
		}
	}
	return out, nil
}

type Recommendation struct {
	Category       string `json:"category"`
	Priority       string `json:"priority"`
	Issue          string `json:"issue"`
	Recommendation string `json:"recommendation"`
	Impact         string `json:"impact"`
}

// StrategicEnv is what the strategic rules can see. Has* fields are false
// when the corresponding analysis was not requested.
type StrategicEnv struct {
	WinRate      int
	HasPipeline  bool
	OverdueCount int
	HasOwners    bool
	OwnerCount   int
	TopOwner     string
	TopWinRate   int
	AvgWinRate   float64
}

var strategicRules = mustRuleSet(
	Rule[StrategicEnv, Recommendation]{
		Name:      "low-win-rate",
		Condition: "WinRate < 30",
		Emit: func(e StrategicEnv) Recommendation {
			return Recommendation{
				Category:       "Performance",
				Priority:       "high",
				Issue:          fmt.Sprintf("Low win rate (%d%%)", e.WinRate),
				Recommendation: "Tighten qualification criteria and sharpen competitive differentiation",
				Impact:         "Improve deal quality and close rates",
			}
		},
	},
	Rule[StrategicEnv, Recommendation]{
		Name:      "overdue-pipeline",
		Condition: "HasPipeline && OverdueCount > 0",
		Emit: func(e StrategicEnv) Recommendation {
			return Recommendation{
				Category:       "Pipeline Management",
				Priority:       "high",
				Issue:          fmt.Sprintf("%d overdue opportunities", e.OverdueCount),
				Recommendation: "Review overdue opportunities and reset their close dates",
				Impact:         "Improve forecast accuracy and pipeline hygiene",
			}
		},
	},
	Rule[StrategicEnv, Recommendation]{
		Name:      "owner-spread",
		Condition: "HasOwners && OwnerCount > 1 && TopWinRate > AvgWinRate + 20",
		Emit: func(e StrategicEnv) Recommendation {
			return Recommendation{
				Category:       "Team Development",
				Priority:       "medium",
				Issue:          "Significant performance variation across team members",
				Recommendation: fmt.Sprintf("Share best practices from %s (%d%% win rate)", e.TopOwner, e.TopWinRate),
				Impact:         "Raise overall team performance",
			}
		},
	},
)

func StrategicRecommendations(env StrategicEnv) ([]Recommendation, error) {
	return strategicRules.Evaluate(env)
}

type EngagementRecommendation struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
}

type EngagementEnv struct {
	TotalActivities int
	Inbound         int
	Outbound        int
	HasLastActivity bool
	DaysSinceLast   int
	CallTopics      int
	Trend           string
}

func engagementRule(name, cond, kind, priority string, msg func(EngagementEnv) string) Rule[EngagementEnv, EngagementRecommendation] {
	return Rule[EngagementEnv, EngagementRecommendation]{
		Name:      name,
		Condition: cond,
		Emit: func(e EngagementEnv) EngagementRecommendation {
			return EngagementRecommendation{Type: kind, Priority: priority, Message: msg(e)}
		},
	}
}

func fixed(s string) func(EngagementEnv) string {
	return func(EngagementEnv) string { return s }
}

var engagementRules = mustRuleSet(
	engagementRule("low-activity", "TotalActivities < 3", "engagement", "high",
		fixed("Low activity count, schedule a discovery call to increase engagement")),
	engagementRule("inbound-imbalance", "Inbound + Outbound > 0 && Inbound > Outbound * 2", "communication", "medium",
		fixed("Client showing high inbound interest, increase outbound follow-up")),
	engagementRule("stale", "HasLastActivity && DaysSinceLast > 7", "follow-up", "high",
		func(e EngagementEnv) string { return fmt.Sprintf("Re-engage: %d days since last activity", e.DaysSinceLast) }),
	engagementRule("cooling", "HasLastActivity && DaysSinceLast > 3 && DaysSinceLast <= 7", "follow-up", "medium",
		fixed("Follow up to maintain momentum")),
	engagementRule("topic-breadth", "CallTopics > 2", "progression", "medium",
		fixed("Multiple discussion topics indicate readiness for next stage")),
	engagementRule("declining", `Trend == "declining"`, "engagement", "high",
		fixed("Engagement declining, schedule a check-in call")),
	engagementRule("increasing", `Trend == "increasing"`, "progression", "medium",
		fixed("High engagement momentum, consider advancing to next stage")),
)

func EngagementRecommendations(env EngagementEnv) ([]EngagementRecommendation, error) {
	return engagementRules.Evaluate(env)
}
