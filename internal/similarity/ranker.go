// Package similarity ranks embedded candidates against a query vector by
// cosine similarity. Ranking is a brute-force scan held in memory.
package similarity

import (
	"math"
	"sort"
)

// Candidate is a vector with an identifier and an arbitrary payload.
type Candidate[T any] struct {
	ID      string
	Vector  []float32
	Payload T
}

// Result is a scored candidate.
type Result[T any] struct {
	ID      string
	Score   float64
	Payload T
}

// Cosine returns the cosine similarity of a and b. Vectors of different
// length, empty vectors, zero-norm vectors and vectors holding NaN or Inf
// components score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}

	score := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	// Rounding can push identical vectors a hair past 1.
	return math.Max(-1, math.Min(1, score))
}

// Rank scores every candidate against query, keeps those scoring strictly
// above minScore, and returns at most topK of them in descending score order.
// Candidates with equal scores keep their input order.
func Rank[T any](query []float32, candidates []Candidate[T], minScore float64, topK int) []Result[T] {
	if topK <= 0 || len(candidates) == 0 {
		return nil
	}

	results := make([]Result[T], 0, len(candidates))
	for _, c := range candidates {
		score := Cosine(query, c.Vector)
		if score <= minScore {
			continue
		}
		results = append(results, Result[T]{ID: c.ID, Score: score, Payload: c.Payload})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
