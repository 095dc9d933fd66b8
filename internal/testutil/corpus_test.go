package testutil

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCorpus_Deterministic(t *testing.T) {
	a := QueryCorpus(42, 50)
	b := QueryCorpus(42, 50)
	require.Len(t, a, 50)
	assert.Equal(t, a, b)
}

func TestQueryCorpus_SeedsDiffer(t *testing.T) {
	assert.NotEqual(t, QueryCorpus(1, 20), QueryCorpus(2, 20))
}

func TestQueryCorpus_NonEmptyQueries(t *testing.T) {
	for _, q := range QueryCorpus(7, 200) {
		assert.NotEmpty(t, q)
		assert.True(t, utf8.ValidString(q))
	}
}

func TestLongQuery(t *testing.T) {
	for _, n := range []int{0, 1, 27, 300, 301, 1000} {
		assert.Equal(t, n, utf8.RuneCountInString(LongQuery(n)))
	}
}
