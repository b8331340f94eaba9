// Package svm defines the boundary to the quadratic-programming solver
// which fits a maximum-margin multi-class classifier.
//
// The solver itself is external.
// Everything the pipeline needs from it is expressed by the
// Solver and Model interfaces so that any numerical back-end of
// adequate behavior can be substituted.
package svm

import "fmt"

// Kernel selects the similarity function of the classifier.
type Kernel int

const (
	Linear Kernel = iota
	Poly
	RBF
	Sigmoid
)

var kernelNames = map[Kernel]string{
	Linear:  "linear",
	Poly:    "poly",
	RBF:     "rbf",
	Sigmoid: "sigmoid",
}

func (k Kernel) String() string {
	if name, ok := kernelNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kernel(%d)", int(k))
}

// ParseKernel maps a kernel name to its constant.
func ParseKernel(s string) (Kernel, error) {
	for k, name := range kernelNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf(`unknown kernel "%s"`, s)
}

// MarshalText encodes the kernel by name.
func (k Kernel) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kernel from its name.
func (k *Kernel) UnmarshalText(text []byte) error {
	v, err := ParseKernel(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Param describes one training configuration.
// Degree, Gamma and Coef0 are meaningful only for the chosen kernel.
// Weights optionally scales the penalty C per class label.
// Eps and MaxIter are the termination criteria of the optimizer.
type Param struct {
	Kernel  Kernel
	Degree  int
	Gamma   float64
	Coef0   float64
	C       float64
	Weights map[int]float64 `json:",omitempty"`
	Eps     float64
	MaxIter int
	// Kernel cache size in megabytes.
	CacheSize float64
}

// Model is a trained classifier.
// A Model is immutable once training returns and
// safe for concurrent use.
type Model interface {
	// Predict returns the label assigned to the sample x.
	// The label is one of those seen during training.
	Predict(x []float64) float64
	// NumSupportVectors returns the number of support vectors
	// defining the decision boundary.
	NumSupportVectors() int
}

// Solver fits maximum-margin classifiers.
type Solver interface {
	// Train fits a model to the labelled samples x, y.
	// It never returns a partially-fit model:
	// a solver failure is an error and a nil model.
	Train(x [][]float64, y []float64, p Param) (Model, error)
	// CrossValidate partitions the samples into folds parts,
	// repeatedly trains on all parts but one,
	// and returns the out-of-fold prediction for every sample.
	CrossValidate(x [][]float64, y []float64, p Param, folds int) ([]float64, error)
}
