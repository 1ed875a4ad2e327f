package vachead

import (
	"math"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec/anyvec64"
	"github.com/unixpickle/serializer"
)

func TestLayerNormValues(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	ln := NewLayerNorm(c, 4)
	in := anydiff.NewConst(c.MakeVectorData([]float64{
		1, 3, 5, 7,
		2, 2, 2, 2,
	}))
	out := ln.Apply(in, 2)

	s := 1 / math.Sqrt(5)
	expected := c.MakeVectorData([]float64{
		-3 * s, -s, s, 3 * s,
		0, 0, 0, 0,
	})
	assertSimilar(t, out.Output(), expected)
}

func TestLayerNormAffine(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	ln := NewLayerNorm(c, 2)
	ln.Scale.Vector.SetData(c.MakeNumericList([]float64{2, 3}))
	ln.Shift.Vector.SetData(c.MakeNumericList([]float64{1, -1}))
	in := anydiff.NewConst(c.MakeVectorData([]float64{-1, 1}))
	out := ln.Apply(in, 1)
	expected := c.MakeVectorData([]float64{-1, 2})
	assertSimilar(t, out.Output(), expected)
}

func TestLayerNormParameters(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	ln := NewLayerNorm(c, 3)
	if len(ln.Parameters()) != 2 {
		t.Errorf("expected 2 parameters but got %d", len(ln.Parameters()))
	}
}

func TestLayerNormSerialize(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	ln := NewLayerNorm(c, 3)
	ln.Scale.Vector.SetData(c.MakeNumericList([]float64{1, 2, 3}))
	ln.Shift.Vector.SetData(c.MakeNumericList([]float64{0.5, 0, -0.5}))
	data, err := serializer.SerializeAny(ln)
	if err != nil {
		t.Fatal(err)
	}
	var restored *LayerNorm
	if err := serializer.DeserializeAny(data, &restored); err != nil {
		t.Fatal(err)
	}
	in := anydiff.NewConst(randomVec(c, 2*3))
	assertSimilar(t, restored.Apply(in, 2).Output(), ln.Apply(in, 2).Output())
}
