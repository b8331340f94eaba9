// Command letter-svm trains a multi-class SVM to recognize spoken
// letters from fixed-length acoustic feature vectors and reports its
// accuracy on a held-out test set.
//
// usage: letter-svm [flags] train.csv test.csv
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jvlmdr/go-file/fileutil"

	"github.com/speechex/lettersvm/dataset"
	"github.com/speechex/lettersvm/eval"
	"github.com/speechex/lettersvm/svm"
	"github.com/speechex/lettersvm/train"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage:", os.Args[0], "[flags] train.csv test.csv")
		flag.PrintDefaults()
	}
}

func main() {
	var (
		trainRows = flag.Int("train-rows", 6238, "Number of training samples")
		testRows  = flag.Int("test-rows", 1559, "Number of testing samples")
		attrs     = flag.Int("attrs", 617, "Number of attributes per sample")
		classes   = flag.Int("classes", 26, "Number of classes")
		// Classifier configuration.
		kernelName = flag.String("kernel", "linear", "{linear, poly, rbf, sigmoid}")
		c          = flag.Float64("c", 10, "Penalty C (fixed mode)")
		degree     = flag.Int("degree", 0, "Degree for poly kernel")
		gamma      = flag.Float64("gamma", 0, "Gamma for poly/rbf/sigmoid kernels (0 for 1/attrs)")
		coef0      = flag.Float64("coef0", 0, "Coef0 for poly/sigmoid kernels")
		eps        = flag.Float64("eps", 1e-6, "Termination epsilon of the solver")
		maxIter    = flag.Int("max-iter", 1000, "Iteration limit of the solver")
		cacheSize  = flag.Float64("cache-size", 100, "Solver kernel cache in megabytes")
		// Grid search configuration.
		grid  = flag.Bool("grid", true, "Choose C by cross-validated grid search?")
		folds = flag.Int("folds", 10, "Cross-validation folds")
		minC  = flag.Float64("min-c", 1e-2, "Smallest C in the grid")
		maxC  = flag.Float64("max-c", 1e4, "Largest C in the grid")
		numC  = flag.Int("num-c", 7, "Number of C values in the grid")
		// Whole training configuration from file, overriding the above.
		confFile = flag.String("config", "", "Training configuration (JSON)")
	)
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	trainFile, testFile := flag.Arg(0), flag.Arg(1)

	kernel, err := svm.ParseKernel(*kernelName)
	if err != nil {
		log.Fatal(err)
	}
	cfg := train.Config{
		Param: svm.Param{
			Kernel:    kernel,
			Degree:    *degree,
			Gamma:     *gamma,
			Coef0:     *coef0,
			C:         *c,
			Eps:       *eps,
			MaxIter:   *maxIter,
			CacheSize: *cacheSize,
		},
		Search: train.SearchSpec{
			Grid:  *grid,
			Folds: *folds,
			MinC:  *minC,
			MaxC:  *maxC,
			NumC:  *numC,
		},
	}
	if *confFile != "" {
		if err := fileutil.LoadExt(*confFile, &cfg); err != nil {
			log.Fatalf(`load config "%s": %v`, *confFile, err)
		}
	}
	schema := dataset.Schema{
		TrainRows: *trainRows,
		TestRows:  *testRows,
		Attrs:     *attrs,
		Classes:   *classes,
	}

	log.Println("load training set:", trainFile)
	trainSet, err := schema.LoadTrain(trainFile)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("load testing set:", testFile)
	testSet, err := schema.LoadTest(testFile)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Search.Grid {
		log.Printf("train with %d-fold search over C in [%g, %g]", cfg.Search.Folds, cfg.Search.MinC, cfg.Search.MaxC)
	} else {
		log.Printf("train with fixed C %g", cfg.Param.C)
	}
	model, param, err := train.Train(svm.LibSVM{}, trainSet, cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("using parameters degree %d, gamma %g, coef0 %g, C %g", param.Degree, param.Gamma, param.Coef0, param.C)
	log.Printf("support vectors: %d", model.NumSupportVectors())

	log.Println("evaluate on testing set:", testFile)
	acc := eval.Evaluate(model, testSet)
	if err := eval.WriteReport(os.Stdout, param, model, acc, schema.Classes); err != nil {
		log.Fatal(err)
	}
}
