package eval

import (
	"bufio"
	"fmt"
	"io"

	"github.com/speechex/lettersvm/svm"
)

// ClassName returns the spoken letter for a class label,
// "A" for 1 through "Z" for 26, or the number itself beyond that.
func ClassName(label int) string {
	if label >= 1 && label <= 26 {
		return string(rune('A' + label - 1))
	}
	return fmt.Sprint(label)
}

// WriteReport writes the evaluation summary: the effective
// hyperparameters and support-vector count, correct and wrong counts
// with percentages, and the false-positive count of every class.
func WriteReport(w io.Writer, p svm.Param, m svm.Model, acc *Accum, classes int) error {
	buf := bufio.NewWriter(w)
	fmt.Fprintf(buf, "kernel %v, degree %d, gamma %g, coef0 %g, C %g, eps %g, max iterations %d\n",
		p.Kernel, p.Degree, p.Gamma, p.Coef0, p.C, p.Eps, p.MaxIter)
	fmt.Fprintf(buf, "support vectors: %d\n", m.NumSupportVectors())
	fmt.Fprintf(buf, "correct classifications: %d (%g%%)\n", acc.Correct, acc.Percent(acc.Correct))
	fmt.Fprintf(buf, "wrong classifications: %d (%g%%)\n", acc.Wrong, acc.Percent(acc.Wrong))
	for label := 1; label <= classes; label++ {
		n := acc.FalsePos[label]
		fmt.Fprintf(buf, "class %s false positives: %d (%g%%)\n", ClassName(label), n, acc.Percent(n))
	}
	return buf.Flush()
}
