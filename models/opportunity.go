// ABOUTME: Typed views over Opportunity and Task records
// ABOUTME: Converts raw query rows into the shapes the analytics engine reads
package models

import "time"

const UnknownLabel = "Unknown"

type Opportunity struct {
	ID          string
	Name        string
	Amount      *float64
	Stage       string
	Probability float64
	CloseDate   *time.Time
	IsWon       bool
	IsClosed    bool
	Type        string
	LeadSource  string
	AccountName string
	Industry    string
	Website     string
	Employees   *float64
	OwnerName   string
	CreatedDate *time.Time
}

// AmountOrZero treats a missing amount as zero for sums.
func (o Opportunity) AmountOrZero() float64 {
	if o.Amount == nil {
		return 0
	}
	return *o.Amount
}

// IsLost reports a closed opportunity that was not won.
func (o Opportunity) IsLost() bool {
	return o.IsClosed && !o.IsWon
}

func OpportunityFromRecord(r Record) Opportunity {
	opp := Opportunity{
		ID:          r.String("Id"),
		Name:        r.String("Name"),
		Stage:       r.String("StageName"),
		IsWon:       r.Bool("IsWon"),
		IsClosed:    r.Bool("IsClosed"),
		Type:        r.String("Type"),
		LeadSource:  r.String("LeadSource"),
		AccountName: r.String("Account.Name"),
		Industry:    r.String("Account.Industry"),
		Website:     r.String("Account.Website"),
		OwnerName:   r.String("Owner.Name"),
	}
	if amount, ok := r.Float("Amount"); ok {
		opp.Amount = &amount
	}
	if p, ok := r.Float("Probability"); ok {
		opp.Probability = p
	}
	if employees, ok := r.Float("Account.NumberOfEmployees"); ok {
		opp.Employees = &employees
	}
	if t, ok := r.Time("CloseDate"); ok {
		opp.CloseDate = &t
	}
	if t, ok := r.Time("CreatedDate"); ok {
		opp.CreatedDate = &t
	}
	return opp
}

func OpportunitiesFromRecords(records []Record) []Opportunity {
	out := make([]Opportunity, len(records))
	for i, r := range records {
		out[i] = OpportunityFromRecord(r)
	}
	return out
}

// Activity is a logged Task against a record.
type Activity struct {
	ID          string
	Subject     string
	Type        string
	Status      string
	ContactName string
	CreatedDate *time.Time
}

func ActivityFromRecord(r Record) Activity {
	a := Activity{
		ID:          r.String("Id"),
		Subject:     r.String("Subject"),
		Type:        r.String("Type"),
		Status:      r.String("Status"),
		ContactName: r.String("Who.Name"),
	}
	if t, ok := r.Time("CreatedDate"); ok {
		a.CreatedDate = &t
	}
	return a
}

func ActivitiesFromRecords(records []Record) []Activity {
	out := make([]Activity, len(records))
	for i, r := range records {
		out[i] = ActivityFromRecord(r)
	}
	return out
}
