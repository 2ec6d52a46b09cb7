package analytics

import (
	"math"
	"slices"
)

// Rate returns part/whole as a rounded percentage, or 0 when whole is 0.
func Rate(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Round(sum / float64(n))
}

// tally counts keys and remembers first-seen order so ties sort stably.
type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: map[string]int{}}
}

func (t *tally) add(key string) {
	if key == "" {
		return
	}
	if _, seen := t.counts[key]; !seen {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

func (t *tally) total() int {
	sum := 0
	for _, c := range t.counts {
		sum += c
	}
	return sum
}

// Share is one entry of a top-N distribution.
type Share struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// top returns the n most frequent keys, with percentages of denominator.
func (t *tally) top(n, denominator int) []Share {
	out := make([]Share, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, Share{Name: k, Count: t.counts[k], Percentage: Rate(t.counts[k], denominator)})
	}
	slices.SortStableFunc(out, func(a, b Share) int { return b.Count - a.Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
