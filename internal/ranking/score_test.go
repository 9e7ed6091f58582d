package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		query string
		value string
		want  int
	}{
		{"exact", "auth-rules", "auth-rules", 100},
		{"exact ignores case", "Auth-Rules", "AUTH-rules", 100},
		{"substring", "rule", "auth-rules", 90},
		{"fuzzy", "authrule", "auth-rules", 88},
		{"fuzzy window", "revewer", "code-reviewer", 86},
		{"fuzzy unrelated", "xyz", "abc", 0},
		{"empty value", "auth", "", 0},
		{"glob star", "auth*", "auth-rules", 95},
		{"glob ignores case", "AUTH*", "auth-rules", 95},
		{"glob anchored", "auth*", "oauth", 0},
		{"glob star crosses slash", "src/*.go", "src/pkg/main.go", 95},
		{"glob question one rune", "t?st", "test", 95},
		{"glob question not two", "t?st", "toast", 0},
		{"glob question multibyte", "caf?", "café", 95},
		{"glob literal dot", "a.b*", "axbc", 0},
		{"glob literal dot match", "a.b*", "a.bc", 95},
		{"glob skips fuzzy", "authrul?", "auth-rules", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.query, tt.value))
		})
	}
}

func TestScoreWildcardVersusFuzzy(t *testing.T) {
	wild := Score("auth*", "auth-rules")
	fuzzy := Score("authrule", "auth-rules")

	assert.Equal(t, ScoreWildcard, wild)
	assert.NotEqual(t, 0, fuzzy)
	assert.NotEqual(t, ScoreWildcard, fuzzy)
}

func TestPartialRatio(t *testing.T) {
	assert.Equal(t, 100, PartialRatio("", ""))
	assert.Equal(t, 0, PartialRatio("abc", ""))
	assert.Equal(t, 100, PartialRatio("reviewer", "code-reviewer"))
	assert.Equal(t, 100, PartialRatio("code-reviewer", "reviewer"), "argument order does not matter")
	assert.Equal(t, 75, PartialRatio("test", "tset"))
}

func TestIsWildcard(t *testing.T) {
	assert.True(t, IsWildcard("go-*"))
	assert.True(t, IsWildcard("g?"))
	assert.False(t, IsWildcard("go"))
}

func TestCompiledQueryIsDeterministic(t *testing.T) {
	q := Compile("authrule")
	first := q.Score("auth-rules")
	for range 10 {
		assert.Equal(t, first, q.Score("auth-rules"))
	}
	assert.Equal(t, "authrule", q.String())
}
