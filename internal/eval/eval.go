// Package eval compares two partitions of the same identity set with
// pairwise precision, recall and F1 over the implied same-cluster relation.
package eval

import (
	"errors"

	"github.com/Sumatoshi-tech/devdedup/internal/cluster"
)

// ErrSizeMismatch indicates the two partitions cover different identity sets.
var ErrSizeMismatch = errors.New("partitions cover different numbers of identities")

// Result holds the pairwise agreement metrics between a candidate partition
// and a reference partition.
type Result struct {
	// TotalPairs is the number of unordered identity pairs considered.
	TotalPairs int `json:"total_pairs" yaml:"total_pairs"`
	// CandidatePositive is the number of same-cluster pairs in the candidate.
	CandidatePositive int `json:"candidate_positive" yaml:"candidate_positive"`
	// ReferencePositive is the number of same-cluster pairs in the reference.
	ReferencePositive int `json:"reference_positive" yaml:"reference_positive"`
	// TruePositive counts pairs both partitions place in one cluster.
	TruePositive int `json:"true_positive" yaml:"true_positive"`
	// Agreement counts pairs on which the two partitions agree either way.
	Agreement int `json:"agreement" yaml:"agreement"`

	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
}

// Compare computes pairwise metrics of the candidate partition against the
// reference. Precision and recall are defined over the same-cluster relation;
// an empty relation degrades to 1.0 rather than dividing by zero, so two
// all-singleton partitions score perfect agreement.
func Compare(candidate, reference *cluster.Partition) (Result, error) {
	if candidate.Len() != reference.Len() {
		return Result{}, ErrSizeMismatch
	}

	n := candidate.Len()

	var res Result

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			res.TotalPairs++

			inCand := candidate.SameCluster(i, j)
			inRef := reference.SameCluster(i, j)

			if inCand {
				res.CandidatePositive++
			}

			if inRef {
				res.ReferencePositive++
			}

			if inCand && inRef {
				res.TruePositive++
			}

			if inCand == inRef {
				res.Agreement++
			}
		}
	}

	res.Precision = ratioOrOne(res.TruePositive, res.CandidatePositive)
	res.Recall = ratioOrOne(res.TruePositive, res.ReferencePositive)
	res.F1 = f1Score(res.Precision, res.Recall)

	return res, nil
}

// ratioOrOne returns num/den, or 1.0 for an empty denominator: proposing no
// pairs is perfectly precise, and a reference with no positive pairs is
// fully recalled by anything.
func ratioOrOne(num, den int) float64 {
	if den == 0 {
		return 1
	}

	return float64(num) / float64(den)
}

func f1Score(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}

	return 2 * precision * recall / (precision + recall)
}
