// Package dataset loads fixed-shape numeric datasets from CSV files.
//
// A dataset file holds one sample per line: a fixed number of
// floating-point attributes followed by an integer class label.
// The number of rows and attributes is declared up front,
// never inferred from the file.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Schema gives the dimensions of one dataset pair.
// Class labels are integers in 1..Classes.
type Schema struct {
	TrainRows int
	TestRows  int
	Attrs     int
	Classes   int
}

// Set is an ordered collection of samples.
// X has one row per sample with Attrs columns, Y holds the labels.
// A Set is not modified after it is loaded.
type Set struct {
	X [][]float64
	Y []float64
}

// Len returns the number of samples.
func (s *Set) Len() int { return len(s.X) }

// RowError describes a malformed or missing row in a dataset file.
type RowError struct {
	Path string
	Line int
	Err  error
}

func (e *RowError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("row %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s: row %d: %v", e.Path, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Load reads exactly rows samples of attrs attributes plus a label
// from the file at path.
// A file which cannot be opened, ends early or contains a malformed
// row is an error; a smaller set is never returned.
func Load(path string, rows, attrs int) (*Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()
	set, err := Decode(file, rows, attrs)
	if err != nil {
		if rerr, ok := err.(*RowError); ok {
			rerr.Path = path
		}
		return nil, err
	}
	return set, nil
}

// Decode reads a dataset from r.
// See Load for the contract.
func Decode(r io.Reader, rows, attrs int) (*Set, error) {
	if rows <= 0 || attrs <= 0 {
		return nil, fmt.Errorf("non-positive dimensions: %d rows, %d attrs", rows, attrs)
	}
	rr := csv.NewReader(r)
	// Row lengths are checked below against the declared shape.
	rr.FieldsPerRecord = -1
	set := &Set{
		X: make([][]float64, 0, rows),
		Y: make([]float64, 0, rows),
	}
	for line := 1; line <= rows; line++ {
		rec, err := rr.Read()
		if err == io.EOF {
			return nil, &RowError{Line: line, Err: fmt.Errorf("file ends after %d of %d rows", line-1, rows)}
		}
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		// Writers which terminate every value with a comma
		// leave an empty field at the end of the record.
		if n := len(rec); n == attrs+2 && rec[n-1] == "" {
			rec = rec[:n-1]
		}
		if len(rec) != attrs+1 {
			return nil, &RowError{Line: line, Err: fmt.Errorf("row has %d values, want %d", len(rec), attrs+1)}
		}
		x := make([]float64, attrs)
		for j, tok := range rec[:attrs] {
			x[j], err = strconv.ParseFloat(strings.TrimSpace(tok), 64)
			if err != nil {
				return nil, &RowError{Line: line, Err: fmt.Errorf("attribute %d: %v", j+1, err)}
			}
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(rec[attrs]), 64)
		if err != nil {
			return nil, &RowError{Line: line, Err: fmt.Errorf("label: %v", err)}
		}
		set.X = append(set.X, x)
		set.Y = append(set.Y, y)
	}
	return set, nil
}

// ValidateLabels checks that every label in set is an integer in 1..classes.
func ValidateLabels(set *Set, classes int) error {
	for i, y := range set.Y {
		k := int(y)
		if float64(k) != y || k < 1 || k > classes {
			return fmt.Errorf("sample %d: label %g outside 1..%d", i+1, y, classes)
		}
	}
	return nil
}

// LoadTrain loads the training set described by the schema.
func (s Schema) LoadTrain(path string) (*Set, error) { return s.load(path, s.TrainRows) }

// LoadTest loads the testing set described by the schema.
func (s Schema) LoadTest(path string) (*Set, error) { return s.load(path, s.TestRows) }

func (s Schema) load(path string, rows int) (*Set, error) {
	set, err := Load(path, rows, s.Attrs)
	if err != nil {
		return nil, err
	}
	if err := ValidateLabels(set, s.Classes); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return set, nil
}
