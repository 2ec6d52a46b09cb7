// ABOUTME: Engagement analysis over the activity log of a single record
// ABOUTME: Classifies call-recorder tagged subjects and derives a trend and follow-up recommendations
package analytics

import (
	"regexp"
	"strings"
	"time"

	"github.com/harperreed/sfmcp/models"
)

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendStable     Trend = "stable"
	TrendDeclining  Trend = "declining"
)

// Subject markers written by the call recorder integration.
const (
	markerPrefix   = "[Gong"
	markerInbound  = "[Gong In]"
	markerOutbound = "[Gong Out]"
)

// markerTag matches a leading or embedded recorder tag such as "[Gong]" or "[Gong Call]".
var markerTag = regexp.MustCompile(`\[Gong[^\]]*\]?\s*`)

const trendWindowDays = 30

type EmailExchanges struct {
	Inbound  int `json:"inbound"`
	Outbound int `json:"outbound"`
}

type EngagementInsights struct {
	TotalActivities  int                        `json:"totalActivities"`
	Calls            int                        `json:"calls"`
	EmailExchanges   EmailExchanges             `json:"emailExchanges"`
	LastActivityDate *time.Time                 `json:"lastActivityDate"`
	CallTopics       []string                   `json:"callTopics"`
	EngagementTrend  Trend                      `json:"engagementTrend"`
	KeyContacts      []string                   `json:"keyContacts"`
	ActivityTypes    map[string]int             `json:"activityTypes"`
	Recommendations  []EngagementRecommendation `json:"recommendations"`
}

// CallTitle strips recorder tags from a subject.
func CallTitle(subject string) string {
	return strings.TrimSpace(markerTag.ReplaceAllString(subject, ""))
}

func AnalyzeEngagement(activities []models.Activity, now time.Time) (*EngagementInsights, error) {
	in := &EngagementInsights{
		TotalActivities: len(activities),
		CallTopics:      []string{},
		KeyContacts:     []string{},
		ActivityTypes:   map[string]int{},
	}

	windowStart := now.AddDate(0, 0, -trendWindowDays)
	recent := 0
	seenContact := map[string]bool{}
	seenTopic := map[string]bool{}

	for _, a := range activities {
		if a.CreatedDate != nil {
			if in.LastActivityDate == nil || a.CreatedDate.After(*in.LastActivityDate) {
				t := *a.CreatedDate
				in.LastActivityDate = &t
			}
			if a.CreatedDate.After(windowStart) {
				recent++
			}
		}

		if a.ContactName != "" && !seenContact[a.ContactName] {
			seenContact[a.ContactName] = true
			in.KeyContacts = append(in.KeyContacts, a.ContactName)
		}

		kind := a.Type
		if kind == "" {
			kind = "Other"
		}
		in.ActivityTypes[kind]++

		switch {
		case !strings.Contains(a.Subject, markerPrefix):
		case strings.Contains(a.Subject, markerInbound):
			in.EmailExchanges.Inbound++
		case strings.Contains(a.Subject, markerOutbound):
			in.EmailExchanges.Outbound++
		default:
			in.Calls++
			if title := CallTitle(a.Subject); title != "" && !seenTopic[title] {
				seenTopic[title] = true
				in.CallTopics = append(in.CallTopics, title)
			}
		}
	}

	in.EngagementTrend = trendFor(recent)

	env := EngagementEnv{
		TotalActivities: in.TotalActivities,
		Inbound:         in.EmailExchanges.Inbound,
		Outbound:        in.EmailExchanges.Outbound,
		CallTopics:      len(in.CallTopics),
		Trend:           string(in.EngagementTrend),
	}
	if in.LastActivityDate != nil {
		env.HasLastActivity = true
		env.DaysSinceLast = int(now.Sub(*in.LastActivityDate).Hours() / 24)
	}

	recs, err := EngagementRecommendations(env)
	if err != nil {
		return nil, err
	}
	in.Recommendations = recs
	return in, nil
}

func trendFor(recent int) Trend {
	switch {
	case recent >= 5:
		return TrendIncreasing
	case recent <= 1:
		return TrendDeclining
	}
	return TrendStable
}
