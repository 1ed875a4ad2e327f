package cardvac

import (
	"fmt"
	"math/rand"

	"github.com/unixpickle/anyvec"
)

// A SampleMode selects how the actor turns a logit vector
// into a discrete choice.
type SampleMode int

const (
	// SampleArgmax picks the highest-scoring index.
	SampleArgmax SampleMode = iota

	// SampleNormal draws an index with probability
	// proportional to the raw logits. The caller is
	// responsible for keeping the logits non-negative and
	// normalizable.
	SampleNormal
)

var sampleModeNames = map[SampleMode]string{
	SampleArgmax: "argmax",
	SampleNormal: "normal",
}

// String returns "argmax" or "normal".
func (s SampleMode) String() string {
	if name, ok := sampleModeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SampleMode(%d)", int(s))
}

func (s SampleMode) valid() bool {
	_, ok := sampleModeNames[s]
	return ok
}

// pick selects an index from a vector of scores.
func (s SampleMode) pick(scores anyvec.Vector) (int, error) {
	switch s {
	case SampleArgmax:
		return anyvec.MaxIndex(scores), nil
	case SampleNormal:
		return sampleMultinomial(scores)
	default:
		return 0, fmt.Errorf("sample mode should be %q or %q, but got %v",
			SampleArgmax, SampleNormal, s)
	}
}

// sampleMultinomial draws an index with probability
// proportional to the given weights.
func sampleMultinomial(weights anyvec.Vector) (int, error) {
	switch data := weights.Data().(type) {
	case []float32:
		w := make([]float64, len(data))
		for i, x := range data {
			w[i] = float64(x)
		}
		return weightedIndex(w)
	case []float64:
		return weightedIndex(data)
	default:
		panic(fmt.Sprintf("unsupported numeric list: %T", data))
	}
}

func weightedIndex(weights []float64) (int, error) {
	var sum float64
	for _, w := range weights {
		if w < 0 {
			return 0, fmt.Errorf("multinomial weight is negative: %v", w)
		}
		sum += w
	}
	if sum <= 0 {
		return 0, fmt.Errorf("multinomial weights sum to %v", sum)
	}
	draw := rand.Float64() * sum
	for i, w := range weights {
		draw -= w
		if draw < 0 {
			return i, nil
		}
	}
	return len(weights) - 1, nil
}
