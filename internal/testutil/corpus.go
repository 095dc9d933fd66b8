package testutil

import (
	"math/rand/v2"
	"strings"
)

// Fragments used by QueryCorpus. They cover every lexical shape the query
// grammar knows plus noise it must skip.
var (
	corpusWords   = []string{"cats", "dogs", "urgent", "new", "york", "bob@example.com", "a/b", "v1.2", "café", "münchen", "TO", "OR", "or", "x-ray", "o'brien", "05"}
	corpusDates   = []string{"12/25/2024", "1/2/2024", "20240101", "20241231", "2024-01-01", "2024-6-30"}
	corpusPrefix  = []string{">=", "<=", ">", "<", "> ", ">= "}
	corpusNoise   = []string{"!", "??", ",", ";", "(", ")", "#", "*", "+", "=", "\t", "--", "-"}
	corpusSpacing = []string{" ", " ", " ", "  ", "   "}
)

// QueryCorpus returns n pseudo-random queries derived from seed.
// The same seed always yields the same corpus.
func QueryCorpus(seed uint64, n int) []string {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]string, n)
	for i := range out {
		out[i] = randomQuery(rng)
	}
	return out
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.IntN(len(from))]
}

func randomQuery(rng *rand.Rand) string {
	var b strings.Builder
	parts := 1 + rng.IntN(6)
	for p := 0; p < parts; p++ {
		if p > 0 {
			b.WriteString(pick(rng, corpusSpacing))
		}
		if rng.IntN(5) == 0 {
			b.WriteString("-")
		}
		switch rng.IntN(8) {
		case 0:
			b.WriteString(pick(rng, corpusDates))
		case 1:
			b.WriteString(pick(rng, corpusPrefix) + pick(rng, corpusDates))
		case 2:
			b.WriteString(pick(rng, corpusDates) + " TO " + pick(rng, corpusDates))
		case 3:
			b.WriteString(pick(rng, corpusWords) + " OR " + pick(rng, corpusWords))
		case 4:
			b.WriteString(`"` + pick(rng, corpusWords) + pick(rng, corpusSpacing) + pick(rng, corpusWords) + `"`)
		case 5:
			b.WriteString(pick(rng, corpusNoise))
		default:
			b.WriteString(pick(rng, corpusWords))
		}
	}
	return b.String()
}

// LongQuery returns a query of exactly n runes built from repeated words.
func LongQuery(n int) string {
	runes := []rune(strings.Repeat("lorem ipsum dolor sit amet ", n/27+1))
	return string(runes[:n])
}
