// ABOUTME: Fluent SOQL query builder
// ABOUTME: Accumulates sanitized predicate fragments joined with AND
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MatchPolicy selects how name patterns are matched.
type MatchPolicy string

const (
	// MatchBoundary matches values starting with the pattern or containing it after a space.
	MatchBoundary MatchPolicy = "boundary"
	// MatchContains matches the pattern anywhere in the value.
	MatchContains MatchPolicy = "contains"
)

// ParseMatchPolicy maps a configuration value onto a policy, defaulting to MatchBoundary.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch MatchPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchBoundary:
		return MatchBoundary, nil
	case MatchContains:
		return MatchContains, nil
	}
	return "", fmt.Errorf("unknown name match policy %q (valid: boundary, contains)", s)
}

var ErrNoObject = errors.New("query has no FROM object")

type Builder struct {
	object     string
	fields     []string
	conditions []string
	orderBy    []string
	limit      int
	policy     MatchPolicy
	err        error
}

// From starts a SELECT against object.
func From(object string) *Builder {
	return &Builder{object: object, policy: MatchBoundary}
}

// Select sets the field list. Order is preserved so generated text is stable.
func (b *Builder) Select(fields ...string) *Builder {
	b.fields = append(b.fields, fields...)
	return b
}

func (b *Builder) WithMatchPolicy(p MatchPolicy) *Builder {
	if p != "" {
		b.policy = p
	}
	return b
}

// Where adds a trusted fragment. Never pass user input here.
func (b *Builder) Where(fragment string) *Builder {
	if fragment != "" {
		b.conditions = append(b.conditions, fragment)
	}
	return b
}

// Match adds a name-pattern condition on field. Blank patterns add nothing.
func (b *Builder) Match(field, pattern string) *Builder {
	p := SanitizePattern(pattern)
	if p == "" {
		return b
	}
	return b.Where(MatchCondition(field, p, b.policy))
}

// MatchCondition builds the LIKE fragment for an already sanitized pattern.
func MatchCondition(field, sanitized string, policy MatchPolicy) string {
	if policy == MatchContains {
		return fmt.Sprintf("%s LIKE '%%%s%%'", field, sanitized)
	}
	return fmt.Sprintf("(%s LIKE '%s%%' OR %s LIKE '%% %s%%')", field, sanitized, field, sanitized)
}

func (b *Builder) Equals(field, value string) *Builder {
	return b.Where(field + " = " + Quote(value))
}

func (b *Builder) NotEquals(field, value string) *Builder {
	return b.Where(field + " != " + Quote(value))
}

func (b *Builder) EqualsBool(field string, value bool) *Builder {
	return b.Where(field + " = " + strconv.FormatBool(value))
}

func (b *Builder) AtLeast(field string, value float64) *Builder {
	return b.Where(field + " >= " + formatNumber(value))
}

func (b *Builder) AtMost(field string, value float64) *Builder {
	return b.Where(field + " <= " + formatNumber(value))
}

// OnOrAfter adds field >= date. Invalid dates are reported by Build.
func (b *Builder) OnOrAfter(field, date string) *Builder {
	return b.dateBound(field, ">=", date)
}

// OnOrBefore adds field <= date. Invalid dates are reported by Build.
func (b *Builder) OnOrBefore(field, date string) *Builder {
	return b.dateBound(field, "<=", date)
}

func (b *Builder) dateBound(field, op, date string) *Builder {
	d, err := ParseDate(date)
	if err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("%s: %w", field, err))
		return b
	}
	return b.Where(field + " " + op + " " + d)
}

func (b *Builder) OrderBy(clauses ...string) *Builder {
	b.orderBy = append(b.orderBy, clauses...)
	return b
}

func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// Conditions returns the accumulated predicate fragments.
func (b *Builder) Conditions() []string {
	out := make([]string, len(b.conditions))
	copy(out, b.conditions)
	return out
}

// WhereClause returns the fragments joined with AND, without the WHERE keyword.
func (b *Builder) WhereClause() string {
	return strings.Join(b.conditions, " AND ")
}

func (b *Builder) Build() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if b.object == "" {
		return "", ErrNoObject
	}

	fields := b.fields
	if len(fields) == 0 {
		fields = []string{"Id", "Name"}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(fields, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.object)
	if len(b.conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(b.WhereClause())
	}
	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(b.limit))
	}
	return sb.String(), nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
