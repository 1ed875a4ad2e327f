package vachead

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvecsave"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

const normEpsilon = 1e-5

func init() {
	var l LayerNorm
	serializer.RegisterTypedDeserializer(l.SerializerType(), DeserializeLayerNorm)
}

// LayerNorm normalizes each row of a batched input to zero
// mean and unit variance, then applies a learned per-feature
// scale and shift.
type LayerNorm struct {
	Scale *anydiff.Var
	Shift *anydiff.Var
}

// NewLayerNorm creates a LayerNorm for rows of the given
// size. The scale starts at 1 and the shift at 0.
func NewLayerNorm(c anyvec.Creator, size int) *LayerNorm {
	scale := c.MakeVector(size)
	scale.AddScalar(c.MakeNumeric(1))
	return &LayerNorm{
		Scale: anydiff.NewVar(scale),
		Shift: anydiff.NewVar(c.MakeVector(size)),
	}
}

// DeserializeLayerNorm deserializes a LayerNorm.
func DeserializeLayerNorm(d []byte) (*LayerNorm, error) {
	var scale, shift *anyvecsave.S
	if err := serializer.DeserializeAny(d, &scale, &shift); err != nil {
		return nil, essentials.AddCtx("deserialize LayerNorm", err)
	}
	return &LayerNorm{
		Scale: anydiff.NewVar(scale.Vector),
		Shift: anydiff.NewVar(shift.Vector),
	}, nil
}

// Apply normalizes a batch of n rows.
func (l *LayerNorm) Apply(in anydiff.Res, n int) anydiff.Res {
	size := l.Scale.Vector.Len()
	if in.Output().Len() != n*size {
		panic("row size must divide input length")
	}
	c := in.Output().Creator()
	invSize := c.MakeNumeric(1 / float64(size))
	onesRow := &anydiff.Matrix{Data: constVec(c, 1, size), Rows: 1, Cols: size}

	mean := anydiff.Scale(anydiff.SumCols(&anydiff.Matrix{
		Data: in,
		Rows: n,
		Cols: size,
	}), invSize)
	meanMat := anydiff.MatMul(false, false,
		&anydiff.Matrix{Data: mean, Rows: n, Cols: 1}, onesRow)
	return anydiff.Pool(anydiff.Sub(in, meanMat.Data), func(centered anydiff.Res) anydiff.Res {
		variance := anydiff.Scale(anydiff.SumCols(&anydiff.Matrix{
			Data: anydiff.Square(centered),
			Rows: n,
			Cols: size,
		}), invSize)
		eps := c.MakeVector(n)
		eps.AddScalar(c.MakeNumeric(normEpsilon))
		invStd := anydiff.Pow(anydiff.Add(variance, anydiff.NewConst(eps)),
			c.MakeNumeric(-0.5))
		invStdMat := anydiff.MatMul(false, false,
			&anydiff.Matrix{Data: invStd, Rows: n, Cols: 1}, onesRow)
		scaleMat := anydiff.MatMul(false, false,
			&anydiff.Matrix{Data: constVec(c, 1, n), Rows: n, Cols: 1},
			&anydiff.Matrix{Data: l.Scale, Rows: 1, Cols: size})
		normed := anydiff.Mul(centered, invStdMat.Data)
		return anydiff.AddRepeated(anydiff.Mul(normed, scaleMat.Data), l.Shift)
	})
}

// Parameters returns the scale and shift vectors.
func (l *LayerNorm) Parameters() []*anydiff.Var {
	return []*anydiff.Var{l.Scale, l.Shift}
}

// SerializerType returns the unique ID used to serialize
// a LayerNorm with the serializer package.
func (l *LayerNorm) SerializerType() string {
	return "github.com/nighood/cardvac/vachead.LayerNorm"
}

// Serialize serializes the layer.
func (l *LayerNorm) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		&anyvecsave.S{Vector: l.Scale.Vector},
		&anyvecsave.S{Vector: l.Shift.Vector},
	)
}

func constVec(c anyvec.Creator, val float64, size int) anydiff.Res {
	vec := c.MakeVector(size)
	vec.AddScalar(c.MakeNumeric(val))
	return anydiff.NewConst(vec)
}
