// ABOUTME: Structured Opportunity filters and their query builders
// ABOUTME: Covers search, similar-deal criteria, insight filters and timeframes
package query

import (
	"fmt"
	"time"
)

var (
	// DetailFields is the field list used for a single Opportunity lookup.
	DetailFields = []string{
		"Id", "Name", "Amount", "Type", "StageName", "Probability", "CloseDate", "Description",
		"LeadSource", "NextStep", "ForecastCategory", "ExpectedRevenue", "TotalOpportunityQuantity",
		"HasOpportunityLineItem", "IsClosed", "IsWon", "LastActivityDate",
		"Account.Name", "Account.Industry", "Account.Website",
		"Owner.Name", "Owner.Email",
		"(SELECT Id, ContactId, Contact.Name, Contact.Email, Role FROM OpportunityContactRoles)",
		"(SELECT Id, CreatedDate, Field, OldValue, NewValue FROM Histories ORDER BY CreatedDate DESC)",
		"(SELECT Id, Title, Body, CreatedDate, CreatedBy.Name FROM Notes ORDER BY CreatedDate DESC)",
		"(SELECT Id, Subject, Status, Priority, CreatedDate FROM Tasks ORDER BY CreatedDate DESC)",
	}

	SearchFields = []string{
		"Id", "Name", "Amount", "StageName", "CloseDate", "Description",
		"Account.Name", "Account.Industry", "Account.Website",
		"Owner.Name", "Owner.Email",
		"ExpectedRevenue", "Probability", "Type",
	}

	// AnalyticsFields covers every field the analytics engine reads.
	AnalyticsFields = []string{
		"Id", "Name", "Amount", "StageName", "Probability", "CloseDate", "IsWon", "IsClosed", "Type",
		"Account.Name", "Account.Industry", "Account.Website", "Account.NumberOfEmployees",
		"Owner.Name", "Owner.Email", "LeadSource", "CreatedDate",
	}

	ActivityFields = []string{
		"Id", "Subject", "Description", "Status", "CreatedDate",
		"ActivityDate", "Priority", "Type", "TaskSubtype", "WhoId", "Who.Name",
	}
)

// StableOrder sorts newest close date first with amount as the tiebreaker so
// repeated paginated calls see the same order.
var StableOrder = []string{"CloseDate DESC", "Amount DESC NULLS LAST"}

// OpportunitySearch holds optional search arguments. Nil means "not filtered".
type OpportunitySearch struct {
	NamePattern        *string
	AccountNamePattern *string
	Stage              *string
	MinAmount          *float64
	MaxAmount          *float64
	CloseDateStart     *string
	CloseDateEnd       *string
}

// Apply adds one fragment per present argument.
func (s OpportunitySearch) Apply(b *Builder) *Builder {
	if s.NamePattern != nil {
		b.Match("Name", *s.NamePattern)
	}
	if s.AccountNamePattern != nil {
		b.Match("Account.Name", *s.AccountNamePattern)
	}
	if s.Stage != nil && *s.Stage != "" {
		b.Equals("StageName", *s.Stage)
	}
	if s.MinAmount != nil {
		b.AtLeast("Amount", *s.MinAmount)
	}
	if s.MaxAmount != nil {
		b.AtMost("Amount", *s.MaxAmount)
	}
	if s.CloseDateStart != nil && *s.CloseDateStart != "" {
		b.OnOrAfter("CloseDate", *s.CloseDateStart)
	}
	if s.CloseDateEnd != nil && *s.CloseDateEnd != "" {
		b.OnOrBefore("CloseDate", *s.CloseDateEnd)
	}
	return b
}

// SearchQuery assembles the Opportunity search with the stable ordering.
func SearchQuery(s OpportunitySearch, policy MatchPolicy) (string, error) {
	b := From("Opportunity").Select(SearchFields...).WithMatchPolicy(policy)
	return s.Apply(b).OrderBy(StableOrder...).Build()
}

// SimilarCriteria describes the population a similar-deal search draws from.
type SimilarCriteria struct {
	Industry       string   `json:"industry,omitempty"`
	MinAmount      *float64 `json:"minAmount,omitempty"`
	MaxAmount      *float64 `json:"maxAmount,omitempty"`
	Stage          string   `json:"stage,omitempty"`
	Type           string   `json:"type,omitempty"`
	IsWon          *bool    `json:"isWon,omitempty"`
	CloseDateStart string   `json:"closeDateStart,omitempty"`
	CloseDateEnd   string   `json:"closeDateEnd,omitempty"`
}

func (c SimilarCriteria) Query(limit int) (string, error) {
	b := From("Opportunity").Select(AnalyticsFields...)
	if c.Industry != "" {
		b.Equals("Account.Industry", c.Industry)
	}
	if c.MinAmount != nil {
		b.AtLeast("Amount", *c.MinAmount)
	}
	if c.MaxAmount != nil {
		b.AtMost("Amount", *c.MaxAmount)
	}
	if c.Stage != "" {
		b.Equals("StageName", c.Stage)
	}
	if c.Type != "" {
		b.Equals("Type", c.Type)
	}
	if c.IsWon != nil {
		b.EqualsBool("IsWon", *c.IsWon)
	}
	if c.CloseDateStart != "" {
		b.OnOrAfter("CloseDate", c.CloseDateStart)
	}
	if c.CloseDateEnd != "" {
		b.OnOrBefore("CloseDate", c.CloseDateEnd)
	}
	return b.OrderBy("CloseDate DESC", "Amount DESC").Limit(limit).Build()
}

type Timeframe string

const (
	CurrentQuarter Timeframe = "current_quarter"
	LastQuarter    Timeframe = "last_quarter"
	CurrentYear    Timeframe = "current_year"
	LastYear       Timeframe = "last_year"
	AllTime        Timeframe = "all_time"
)

// Conditions returns the CloseDate bounds for the timeframe relative to now.
// AllTime yields no conditions.
func (tf Timeframe) Conditions(field string, now time.Time) ([]string, error) {
	year := now.Year()
	quarter := (int(now.Month())-1)/3 + 1
	day := func(y int, m time.Month, d int) string {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format(DateLayout)
	}

	switch tf {
	case CurrentQuarter:
		start := day(year, time.Month((quarter-1)*3+1), 1)
		return []string{field + " >= " + start}, nil
	case LastQuarter:
		q, y := quarter-1, year
		if q == 0 {
			q, y = 4, year-1
		}
		start := day(y, time.Month((q-1)*3+1), 1)
		// day 0 of the following month is the last day of the quarter
		end := day(y, time.Month(q*3+1), 0)
		return []string{field + " >= " + start, field + " <= " + end}, nil
	case CurrentYear:
		return []string{field + " >= " + day(year, time.January, 1)}, nil
	case LastYear:
		return []string{
			field + " >= " + day(year-1, time.January, 1),
			field + " <= " + day(year-1, time.December, 31),
		}, nil
	case AllTime:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown timeframe %q", tf)
}

// InsightFilters narrows the population used for pipeline insights.
type InsightFilters struct {
	Timeframe Timeframe
	MinAmount *float64
	MaxAmount *float64
	Industry  string
	Owner     string
}

// Query builds the insight population query. It returns the timeframe
// fragments separately so callers can report them.
func (f InsightFilters) Query(now time.Time, limit int) (string, []string, error) {
	dateConds, err := f.Timeframe.Conditions("CloseDate", now)
	if err != nil {
		return "", nil, err
	}

	b := From("Opportunity").Select(AnalyticsFields...)
	for _, c := range dateConds {
		b.Where(c)
	}
	if f.MinAmount != nil {
		b.AtLeast("Amount", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		b.AtMost("Amount", *f.MaxAmount)
	}
	if f.Industry != "" {
		b.Equals("Account.Industry", f.Industry)
	}
	if f.Owner != "" {
		b.Equals("Owner.Name", f.Owner)
	}
	soql, err := b.OrderBy("CloseDate DESC").Limit(limit).Build()
	return soql, dateConds, err
}

// ByID builds a single-row lookup.
func ByID(object, id string, fields ...string) (string, error) {
	return From(object).Select(fields...).Equals("Id", id).Build()
}

// ActivitiesFor lists Task activity recorded against a parent record.
func ActivitiesFor(parentID string) (string, error) {
	return From("Task").Select(ActivityFields...).Equals("WhatId", parentID).OrderBy("CreatedDate DESC").Build()
}

// ComparableWins lists won deals in [lo, hi] other than excludeID, newest first.
func ComparableWins(excludeID string, lo, hi float64, limit int) (string, error) {
	return From("Opportunity").Select(AnalyticsFields...).
		EqualsBool("IsWon", true).
		AtLeast("Amount", lo).
		AtMost("Amount", hi).
		NotEquals("Id", excludeID).
		OrderBy("CloseDate DESC").
		Limit(limit).
		Build()
}
