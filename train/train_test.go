package train

import (
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/speechex/lettersvm/dataset"
	"github.com/speechex/lettersvm/eval"
	"github.com/speechex/lettersvm/svm"
)

// stubSolver scores each C by a fixed error rate and
// records every call to Train.
type stubSolver struct {
	// Fraction of out-of-fold predictions to corrupt for a given C.
	rate func(c float64) float64
	fail error

	mu      sync.Mutex
	trained []svm.Param
	sizes   []int
}

type stubModel struct {
	param svm.Param
	x     [][]float64
	y     []float64
}

func (m *stubModel) NumSupportVectors() int { return len(m.x) }

// Predict returns the label of the nearest training sample.
func (m *stubModel) Predict(x []float64) float64 {
	best, bestDist := 0, math.Inf(1)
	for i := range m.x {
		var d float64
		for j := range x {
			diff := x[j] - m.x[i][j]
			d += diff * diff
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return m.y[best]
}

func (s *stubSolver) Train(x [][]float64, y []float64, p svm.Param) (svm.Model, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	s.mu.Lock()
	s.trained = append(s.trained, p)
	s.sizes = append(s.sizes, len(x))
	s.mu.Unlock()
	return &stubModel{param: p, x: x, y: y}, nil
}

func (s *stubSolver) CrossValidate(x [][]float64, y []float64, p svm.Param, folds int) ([]float64, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	pred := make([]float64, len(y))
	copy(pred, y)
	wrong := int(s.rate(p.C) * float64(len(y)))
	for i := 0; i < wrong; i++ {
		pred[i] = -1
	}
	return pred, nil
}

func tenByThree() *dataset.Set {
	set := &dataset.Set{}
	for class := 1; class <= 5; class++ {
		for rep := 0; rep < 2; rep++ {
			v := float64(class) + float64(rep)/10
			set.X = append(set.X, []float64{v, -v, v * v})
			set.Y = append(set.Y, float64(class))
		}
	}
	return set
}

func TestTrainFixed(t *testing.T) {
	solver := &stubSolver{}
	set := tenByThree()
	cfg := DefaultConfig()
	cfg.Search.Grid = false
	m, p, err := Train(solver, set, cfg)
	if err != nil {
		t.Fatal("train:", err)
	}
	if !reflect.DeepEqual(p, cfg.Param) {
		t.Errorf("effective param: want %+v, got %+v", cfg.Param, p)
	}
	if len(solver.trained) != 1 {
		t.Fatalf("solver invocations: want %d, got %d", 1, len(solver.trained))
	}
	if solver.sizes[0] != set.Len() {
		t.Errorf("training set size: want %d, got %d", set.Len(), solver.sizes[0])
	}
	if m.NumSupportVectors() < 0 {
		t.Error("negative support vector count")
	}
}

func TestTrainGridPicksBest(t *testing.T) {
	// Error is minimized at C = 10.
	solver := &stubSolver{
		rate: func(c float64) float64 {
			return math.Abs(math.Log10(c)-1) / 10
		},
	}
	set := tenByThree()
	cfg := DefaultConfig()
	cfg.Search.Folds = 2
	m, p, err := Train(solver, set, cfg)
	if err != nil {
		t.Fatal("train:", err)
	}
	if math.Abs(p.C-10) > 1e-9 {
		t.Errorf("winning C: want %g, got %g", 10.0, p.C)
	}
	if p.C < cfg.Search.MinC || p.C > cfg.Search.MaxC {
		t.Errorf("winning C %g outside grid range [%g, %g]", p.C, cfg.Search.MinC, cfg.Search.MaxC)
	}
	// Final model is retrained on the whole set with the winner.
	last := solver.trained[len(solver.trained)-1]
	if last.C != p.C {
		t.Errorf("retrain C: want %g, got %g", p.C, last.C)
	}
	if n := solver.sizes[len(solver.sizes)-1]; n != set.Len() {
		t.Errorf("retrain set size: want %d, got %d", set.Len(), n)
	}
	if m == nil {
		t.Error("nil model")
	}
}

func TestTrainGridTieBreak(t *testing.T) {
	// All grid points are equal; the smallest C must win.
	solver := &stubSolver{rate: func(c float64) float64 { return 0.2 }}
	cfg := DefaultConfig()
	cfg.Search.Folds = 2
	_, p, err := Train(solver, tenByThree(), cfg)
	if err != nil {
		t.Fatal("train:", err)
	}
	if math.Abs(p.C-cfg.Search.MinC) > 1e-12 {
		t.Errorf("tie break: want %g, got %g", cfg.Search.MinC, p.C)
	}
}

func TestTrainGridBadSpec(t *testing.T) {
	solver := &stubSolver{rate: func(c float64) float64 { return 0 }}
	for _, tc := range []struct {
		name string
		mod  func(*Config)
	}{
		{"empty grid", func(c *Config) { c.Search.NumC = 0 }},
		{"zero min", func(c *Config) { c.Search.MinC = 0 }},
		{"inverted range", func(c *Config) { c.Search.MaxC = c.Search.MinC / 10 }},
		{"one fold", func(c *Config) { c.Search.Folds = 1 }},
	} {
		cfg := DefaultConfig()
		tc.mod(&cfg)
		if _, _, err := Train(solver, tenByThree(), cfg); err == nil {
			t.Errorf("%s: expect error", tc.name)
		}
	}
}

func TestTrainSolverFailure(t *testing.T) {
	solver := &stubSolver{fail: fmt.Errorf("did not converge")}
	cfg := DefaultConfig()
	if _, _, err := Train(solver, tenByThree(), cfg); err == nil {
		t.Fatal("solver failure: expect error")
	}
	cfg.Search.Grid = false
	if _, _, err := Train(solver, tenByThree(), cfg); err == nil {
		t.Fatal("solver failure: expect error")
	}
}

func fiveByThree() *dataset.Set {
	return &dataset.Set{
		X: [][]float64{
			{1.05, -1.05, 1.1},
			{2.05, -2.05, 4.2},
			{3.05, -3.05, 9.3},
			{4.05, -4.05, 16.4},
			{1.9, -1.9, 3.6},
		},
		Y: []float64{1, 2, 3, 4, 5},
	}
}

// Fixed-mode pipeline over a small five-class problem:
// train, evaluate, and check the accumulator invariants.
func TestPipelineFiveClasses(t *testing.T) {
	trainSet := tenByThree()
	testSet := fiveByThree()
	solver := &stubSolver{}
	cfg := DefaultConfig()
	cfg.Search.Grid = false
	m, _, err := Train(solver, trainSet, cfg)
	if err != nil {
		t.Fatal("train:", err)
	}
	acc := eval.Evaluate(m, testSet)
	if acc.Total() != testSet.Len() {
		t.Errorf("correct %d + wrong %d != %d samples", acc.Correct, acc.Wrong, testSet.Len())
	}
	var sum int
	for _, n := range acc.FalsePos {
		sum += n
	}
	if sum != acc.Wrong {
		t.Errorf("false positives sum to %d, want %d", sum, acc.Wrong)
	}
}

// Two runs over the same inputs must produce the same counts.
func TestPipelineRepeatable(t *testing.T) {
	run := func() *eval.Accum {
		solver := &stubSolver{rate: func(c float64) float64 { return 0.1 }}
		cfg := DefaultConfig()
		cfg.Search.Folds = 2
		m, _, err := Train(solver, tenByThree(), cfg)
		if err != nil {
			t.Fatal("train:", err)
		}
		return eval.Evaluate(m, fiveByThree())
	}
	first, second := run(), run()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated run differs: %+v, %+v", first, second)
	}
}
