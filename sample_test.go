package cardvac

import (
	"math/rand"
	"testing"

	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/anyvec/anyvec64"
	"github.com/unixpickle/approb"
)

func TestSampleArgmax(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	scores := c.MakeVectorData([]float64{0.5, -1, 3, 2.5})
	for i := 0; i < 10; i++ {
		idx, err := SampleArgmax.pick(scores)
		if err != nil {
			t.Fatal(err)
		}
		if idx != 2 {
			t.Errorf("expected index 2 but got %d", idx)
		}
	}
}

func TestSampleNormal(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	weights := c.MakeVectorData([]float64{1, 3, 0.5, 5.5})
	const numSamples = 100000
	counts := make([]float64, 4)
	for i := 0; i < numSamples; i++ {
		idx, err := SampleNormal.pick(weights)
		if err != nil {
			t.Fatal(err)
		}
		counts[idx]++
	}
	actual := c.MakeVectorData(counts)
	actual.Scale(c.MakeNumeric(1.0 / numSamples))
	expected := c.MakeVectorData([]float64{0.1, 0.3, 0.05, 0.55})
	assertSimilar(t, actual, expected)
}

func TestSampleNormalCorrelation(t *testing.T) {
	weights := []float64{1, 3, 0.5, 5.5}
	c := anyvec64.DefaultCreator{}
	vec := c.MakeVectorData(weights)
	corr := approb.Correlation(20000, 0.5, func() float64 {
		idx, _ := SampleNormal.pick(vec)
		return float64(idx)
	}, func() float64 {
		var sum float64
		for _, w := range weights {
			sum += w
		}
		draw := rand.Float64() * sum
		for i, w := range weights {
			draw -= w
			if draw < 0 {
				return float64(i)
			}
		}
		return float64(len(weights) - 1)
	})
	if corr < 0.9 {
		t.Errorf("bad correlation: %f", corr)
	}
}

func TestSampleNormalFloat32(t *testing.T) {
	c := anyvec32.CurrentCreator()
	weights := c.MakeVector(3)
	weights.SetData(c.MakeNumericList([]float64{1, 0, 0}))
	for i := 0; i < 10; i++ {
		idx, err := SampleNormal.pick(weights)
		if err != nil {
			t.Fatal(err)
		}
		if idx != 0 {
			t.Errorf("expected index 0 but got %d", idx)
		}
	}
}

func TestSampleNormalInvalid(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	if _, err := SampleNormal.pick(c.MakeVectorData([]float64{1, -0.5, 2})); err == nil {
		t.Error("expected error for negative weight")
	}
	if _, err := SampleNormal.pick(c.MakeVectorData([]float64{0, 0, 0})); err == nil {
		t.Error("expected error for zero sum")
	}
}

func TestSampleModeUnknown(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	if _, err := SampleMode(42).pick(c.MakeVectorData([]float64{1, 2})); err == nil {
		t.Error("expected error for unknown sample mode")
	}
}
