package svm

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ewalker544/libsvm-go"
)

// LibSVM solves the training problem with the libsvm port.
// The zero value is ready to use.
type LibSVM struct{}

var _ Solver = LibSVM{}

// Train fits a C-SVC model to the samples.
func (LibSVM) Train(x [][]float64, y []float64, p Param) (Model, error) {
	if err := checkShape(x, y); err != nil {
		return nil, err
	}
	if err := checkParam(p); err != nil {
		return nil, err
	}
	param := libsvmParam(p, len(x[0]))
	// The port reads problems from file, not memory.
	fname, err := writeProblemFile(x, y)
	if err != nil {
		return nil, err
	}
	defer os.Remove(fname)
	prob, err := libSvm.NewProblem(fname, param)
	if err != nil {
		return nil, fmt.Errorf("svm problem: %v", err)
	}
	model := libSvm.NewModel(param)
	if err := model.Train(prob); err != nil {
		return nil, fmt.Errorf("svm training failed: %v", err)
	}
	sv, err := supportVectors(model)
	if err != nil {
		return nil, err
	}
	return &libsvmModel{model: model, sv: sv}, nil
}

// CrossValidate partitions the samples into folds balanced parts,
// trains on the complement of each part and predicts the part held
// out, and returns the out-of-fold prediction for every sample.
// The partition is drawn from the shared rand source, which is
// never reseeded.
func (l LibSVM) CrossValidate(x [][]float64, y []float64, p Param, folds int) ([]float64, error) {
	if err := checkShape(x, y); err != nil {
		return nil, err
	}
	if folds < 2 || folds > len(x) {
		return nil, fmt.Errorf("cross-validation folds %d outside 2..%d", folds, len(x))
	}
	pred := make([]float64, len(x))
	for _, hold := range foldSplits(len(x), folds) {
		held := make(map[int]bool, len(hold))
		for _, j := range hold {
			held[j] = true
		}
		xt := make([][]float64, 0, len(x)-len(hold))
		yt := make([]float64, 0, len(x)-len(hold))
		for i := range x {
			if held[i] {
				continue
			}
			xt = append(xt, x[i])
			yt = append(yt, y[i])
		}
		m, err := l.Train(xt, yt, p)
		if err != nil {
			return nil, fmt.Errorf("cross-validation fold: %v", err)
		}
		for _, j := range hold {
			pred[j] = m.Predict(x[j])
		}
	}
	return pred, nil
}

// foldSplits partitions a random permutation of 0..n-1 into
// folds groups of near-equal size.
func foldSplits(n, folds int) [][]int {
	perm := rand.Perm(n)
	splits := make([][]int, folds)
	for i, j := range perm {
		splits[i%folds] = append(splits[i%folds], j)
	}
	return splits
}

type libsvmModel struct {
	model *libSvm.Model
	sv    int
}

func (m *libsvmModel) Predict(x []float64) float64 {
	return m.model.Predict(vector(x))
}

func (m *libsvmModel) NumSupportVectors() int { return m.sv }

func checkShape(x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("empty training set")
	}
	if len(x) != len(y) {
		return fmt.Errorf("samples and labels differ: %d, %d", len(x), len(y))
	}
	return nil
}

func checkParam(p Param) error {
	if p.C <= 0 {
		return fmt.Errorf("C must be positive: %g", p.C)
	}
	if p.Eps <= 0 {
		return fmt.Errorf("eps must be positive: %g", p.Eps)
	}
	if p.Kernel == Poly && p.Degree < 1 {
		return fmt.Errorf("poly kernel needs degree >= 1: %d", p.Degree)
	}
	return nil
}

// vector converts a dense sample to the sparse map the solver
// predicts from. Attribute indices count from one.
func vector(x []float64) map[int]float64 {
	v := make(map[int]float64, len(x))
	for i, val := range x {
		if val == 0 {
			continue
		}
		v[i+1] = val
	}
	return v
}

// writeProblem writes samples in the sparse text format the solver
// reads: a label followed by index:value pairs, indices from one.
func writeProblem(w io.Writer, x [][]float64, y []float64) error {
	buf := bufio.NewWriter(w)
	for i := range x {
		if _, err := fmt.Fprintf(buf, "%g", y[i]); err != nil {
			return err
		}
		for j, v := range x[i] {
			if v == 0 {
				continue
			}
			if _, err := fmt.Fprintf(buf, " %d:%g", j+1, v); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(buf); err != nil {
			return err
		}
	}
	return buf.Flush()
}

func writeProblemFile(x [][]float64, y []float64) (string, error) {
	file, err := os.CreateTemp("", "svm-prob-")
	if err != nil {
		return "", err
	}
	if err := writeProblem(file, x, y); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}

// supportVectors recovers the support-vector count from a model dump;
// the port keeps it unexported.
func supportVectors(model *libSvm.Model) (int, error) {
	file, err := os.CreateTemp("", "svm-model-")
	if err != nil {
		return 0, err
	}
	fname := file.Name()
	file.Close()
	defer os.Remove(fname)
	if err := model.Dump(fname); err != nil {
		return 0, fmt.Errorf("dump model: %v", err)
	}
	f, err := os.Open(fname)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return scanTotalSV(f)
}

// scanTotalSV reads the total_sv field from a model file header.
func scanTotalSV(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 2 && fields[0] == "total_sv" {
			return strconv.Atoi(fields[1])
		}
		if len(fields) > 0 && fields[0] == "SV" {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("model header lacks total_sv")
}

func libsvmParam(p Param, attrs int) *libSvm.Parameter {
	param := libSvm.NewParameter()
	param.SvmType = libSvm.C_SVC
	param.KernelType = kernelType(p.Kernel)
	param.Degree = p.Degree
	param.Gamma = p.Gamma
	param.Coef0 = p.Coef0
	param.C = p.C
	param.Eps = p.Eps
	param.QuietMode = true
	if p.CacheSize > 0 {
		param.CacheSize = int(p.CacheSize)
	}
	if param.Gamma == 0 && attrs > 0 {
		// libsvm's default when gamma is unset.
		param.Gamma = 1 / float64(attrs)
	}
	if len(p.Weights) > 0 {
		labels := make([]int, 0, len(p.Weights))
		for label := range p.Weights {
			labels = append(labels, label)
		}
		sort.Ints(labels)
		for _, label := range labels {
			param.WeightLabel = append(param.WeightLabel, label)
			param.Weight = append(param.Weight, p.Weights[label])
		}
		param.NrWeight = len(labels)
	}
	return param
}

func kernelType(k Kernel) int {
	switch k {
	case Poly:
		return libSvm.POLY
	case RBF:
		return libSvm.RBF
	case Sigmoid:
		return libSvm.SIGMOID
	}
	return libSvm.LINEAR
}
