package ranking

import "sort"

// Threshold is the score a candidate must exceed to be returned.
const Threshold = 30

// DefaultLimit applies when a limit is not positive.
const DefaultLimit = 10

// Field is one searchable value of a candidate. A zero Weight counts as 1.
type Field struct {
	Value  string
	Weight float64
}

// Weighted field weights.
const (
	WeightContent = 0.5
	WeightAuthor  = 0.7
	WeightConfig  = 0.5
)

func (f Field) score(q *Query) int {
	s := q.Score(f.Value)
	if f.Weight == 0 || f.Weight == 1 {
		return s
	}
	return int(float64(s) * f.Weight)
}

// Hit is a ranked candidate.
type Hit[T any] struct {
	Item  T
	Score int
}

// ScoreFields returns the best weighted score over fields.
func ScoreFields(q *Query, fields []Field) int {
	best := 0
	for _, f := range fields {
		best = max(best, f.score(q))
	}
	return best
}

// Rank scores every item by its best field, drops items at or below
// Threshold and returns at most limit hits, highest first. Equal scores keep
// the input order.
func Rank[T any](q *Query, items []T, fields func(T) []Field, limit int) []Hit[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}

	hits := make([]Hit[T], 0)
	for _, item := range items {
		if s := ScoreFields(q, fields(item)); s > Threshold {
			hits = append(hits, Hit[T]{Item: item, Score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
