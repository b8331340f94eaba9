// Package train fits a classifier to a training set, optionally
// choosing the penalty C by cross-validated grid search.
package train

import (
	"fmt"
	"log"

	"github.com/gonum/floats"
	"golang.org/x/sync/errgroup"

	"github.com/speechex/lettersvm/dataset"
	"github.com/speechex/lettersvm/eval"
	"github.com/speechex/lettersvm/svm"
)

// SearchSpec describes the grid search over the penalty C.
// The kernel and its parameters are held fixed;
// the search deliberately does not explore kernel choice.
type SearchSpec struct {
	Grid  bool
	Folds int
	// NumC values log-spaced from MinC to MaxC inclusive.
	MinC float64
	MaxC float64
	NumC int
}

// Config is the complete training configuration.
// In grid mode Param.C serves only as a fallback and is replaced by
// the winning grid value.
type Config struct {
	Param  svm.Param
	Search SearchSpec
}

// DefaultConfig mirrors the reference configuration:
// linear kernel, C 10, termination after 1000 iterations or at
// epsilon 1e-6, ten-fold search over seven values of C from
// 1e-2 to 1e4.
func DefaultConfig() Config {
	return Config{
		Param: svm.Param{
			Kernel:    svm.Linear,
			C:         10,
			Eps:       1e-6,
			MaxIter:   1000,
			CacheSize: 100,
		},
		Search: SearchSpec{
			Grid:  true,
			Folds: 10,
			MinC:  1e-2,
			MaxC:  1e4,
			NumC:  7,
		},
	}
}

// Train fits a model to set using solver.
// In grid-search mode the penalty C is chosen by k-fold
// cross-validation and the model is retrained on the whole set with
// the winning value.
// The returned Param is the configuration actually used.
func Train(solver svm.Solver, set *dataset.Set, cfg Config) (svm.Model, svm.Param, error) {
	p := cfg.Param
	if cfg.Search.Grid {
		c, err := searchC(solver, set, cfg)
		if err != nil {
			return nil, svm.Param{}, err
		}
		p.C = c
	}
	m, err := solver.Train(set.X, set.Y, p)
	if err != nil {
		return nil, svm.Param{}, fmt.Errorf("train: %v", err)
	}
	return m, p, nil
}

// searchC returns the grid value of C with the lowest mean
// misclassification rate over the cross-validation folds.
// Grid points are evaluated concurrently; ties go to the smallest C.
func searchC(solver svm.Solver, set *dataset.Set, cfg Config) (float64, error) {
	s := cfg.Search
	if s.NumC < 1 {
		return 0, fmt.Errorf("empty grid: %d values of C", s.NumC)
	}
	if !(s.MinC > 0) || s.MaxC < s.MinC {
		return 0, fmt.Errorf("bad grid range: %g to %g", s.MinC, s.MaxC)
	}
	if s.Folds < 2 {
		return 0, fmt.Errorf("cross-validation needs at least two folds: %d", s.Folds)
	}
	cs := make([]float64, s.NumC)
	if s.NumC == 1 {
		cs[0] = s.MinC
	} else {
		floats.LogSpan(cs, s.MinC, s.MaxC)
	}

	rates := make([]float64, len(cs))
	var grp errgroup.Group
	for i := range cs {
		i := i
		grp.Go(func() error {
			p := cfg.Param
			p.C = cs[i]
			pred, err := solver.CrossValidate(set.X, set.Y, p, s.Folds)
			if err != nil {
				return fmt.Errorf("cross-validate C %g: %v", cs[i], err)
			}
			if len(pred) != set.Len() {
				return fmt.Errorf("cross-validate C %g: %d predictions for %d samples", cs[i], len(pred), set.Len())
			}
			var wrong int
			for j := range pred {
				if eval.Mismatch(pred[j], set.Y[j]) {
					wrong++
				}
			}
			rates[i] = float64(wrong) / float64(len(pred))
			log.Printf("C %g: cross-validation error %.4g", cs[i], rates[i])
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return 0, err
	}

	// Reduction does not depend on completion order.
	best := 0
	for i := 1; i < len(rates); i++ {
		if rates[i] < rates[best] {
			best = i
		}
	}
	log.Printf("optimal C %g: cross-validation error %.4g", cs[best], rates[best])
	return cs[best], nil
}
