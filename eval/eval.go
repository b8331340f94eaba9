// Package eval measures the accuracy of a trained classifier
// on a held-out test set.
package eval

import (
	"math"

	"github.com/speechex/lettersvm/dataset"
	"github.com/speechex/lettersvm/svm"
)

// Epsilon bounds the error tolerated when comparing class labels,
// which pass through the solver's floating-point representation.
const Epsilon = 1.19209290e-07

// Mismatch reports whether a predicted label differs from the truth
// by more than floating-point error.
func Mismatch(pred, truth float64) bool {
	return math.Abs(pred-truth) >= Epsilon
}

// Accum accumulates correctness counts over a test set.
// FalsePos counts, for each true class, the samples of that class
// which were predicted as some other class.
// At all times Correct+Wrong equals the number of samples seen and
// the FalsePos counts sum to Wrong.
type Accum struct {
	Correct  int
	Wrong    int
	FalsePos map[int]int
}

func NewAccum() *Accum {
	return &Accum{FalsePos: make(map[int]int)}
}

// Add records one prediction against the true label.
func (a *Accum) Add(pred, truth float64) {
	if Mismatch(pred, truth) {
		a.Wrong++
		a.FalsePos[int(truth)]++
		return
	}
	a.Correct++
}

// Merge adds the counts of b into a.
// Partial accumulators over disjoint samples merge in any order.
func (a *Accum) Merge(b *Accum) {
	a.Correct += b.Correct
	a.Wrong += b.Wrong
	for label, n := range b.FalsePos {
		a.FalsePos[label] += n
	}
}

// Total returns the number of samples seen.
func (a *Accum) Total() int { return a.Correct + a.Wrong }

// Percent expresses a count as a percentage of the samples seen.
func (a *Accum) Percent(n int) float64 {
	return float64(n) * 100 / float64(a.Total())
}

// Evaluate runs the model over every sample of set in order and
// returns the accumulated counts.
func Evaluate(m svm.Model, set *dataset.Set) *Accum {
	acc := NewAccum()
	for i := range set.X {
		acc.Add(m.Predict(set.X[i]), set.Y[i])
	}
	return acc
}
