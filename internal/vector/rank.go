package vector

import (
	"fmt"
	"sort"
)

// Metric selects which similarity function Rank uses and how scores order.
type Metric int

const (
	// MetricDot ranks by dot product, higher is more similar.
	MetricDot Metric = iota
	// MetricCosine ranks by cosine similarity, higher is more similar.
	MetricCosine
	// MetricEuclidean ranks by L2 distance, lower is closer.
	MetricEuclidean
)

// Candidate is one stored vector eligible for ranking. A nil Vector marks an
// item without an embedding; Rank skips it.
type Candidate struct {
	ID     int64
	Vector []float32
}

// Scored is a ranked candidate with its metric value.
type Scored struct {
	ID    int64
	Score float64
}

func (m Metric) score(a, b []float32) (float64, error) {
	switch m {
	case MetricDot:
		return DotProduct(a, b)
	case MetricCosine:
		return CosineSimilarity(a, b)
	case MetricEuclidean:
		return EuclideanDistance(a, b)
	default:
		return 0, fmt.Errorf("vector: unknown metric %d", m)
	}
}

// ascending reports whether smaller scores rank first for this metric.
func (m Metric) ascending() bool {
	return m == MetricEuclidean
}

// Rank scores every candidate against the query vector and returns the topN
// best, ordered by the metric's natural direction. Candidates without a
// vector are skipped. Ties keep input order. A topN larger than the
// candidate count returns everything available.
func Rank(query []float32, cands []Candidate, metric Metric, topN int) ([]Scored, error) {
	scored := make([]Scored, 0, len(cands))
	for _, c := range cands {
		if c.Vector == nil {
			continue
		}
		s, err := metric.score(query, c.Vector)
		if err != nil {
			return nil, fmt.Errorf("score candidate %d: %w", c.ID, err)
		}
		scored = append(scored, Scored{ID: c.ID, Score: s})
	}

	if metric.ascending() {
		sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score < scored[j].Score })
	} else {
		sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	}

	if topN > 0 && len(scored) > topN {
		scored = scored[:topN]
	}
	return scored, nil
}
