package vachead

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var r Reparameterization
	serializer.RegisterTypedDeserializer(r.SerializerType(), DeserializeReparameterization)
}

// A Reparameterization head maps batched feature vectors to
// the mean and standard deviation of a diagonal Gaussian.
type Reparameterization struct {
	Base  anynet.Net
	Mu    *anynet.FC
	Sigma *anynet.FC
}

// NewReparameterization creates a head producing outs means
// and standard deviations per batch row.
//
// The activation and normed arguments behave as they do for
// NewRegression.
func NewReparameterization(c anyvec.Creator, in, hidden, outs, layers int,
	activation anynet.Layer, normed bool) *Reparameterization {
	trunk, cur := hiddenNet(c, in, hidden, layers, activation, normed)
	return &Reparameterization{
		Base:  trunk,
		Mu:    anynet.NewFC(c, cur, outs),
		Sigma: anynet.NewFC(c, cur, outs),
	}
}

// DeserializeReparameterization deserializes a
// Reparameterization head.
func DeserializeReparameterization(d []byte) (*Reparameterization, error) {
	var res Reparameterization
	if err := serializer.DeserializeAny(d, &res.Base, &res.Mu, &res.Sigma); err != nil {
		return nil, essentials.AddCtx("deserialize Reparameterization", err)
	}
	return &res, nil
}

// Apply computes the mean and standard deviation vectors for
// a batch of inputs.
//
// The trunk output is shared by both projections.
func (r *Reparameterization) Apply(in anydiff.Res, n int) (mu, sigma anydiff.Res) {
	hidden := r.Base.Apply(in, n)
	mu = r.Mu.Apply(hidden, n)
	sigma = anydiff.Exp(r.Sigma.Apply(hidden, n))
	return
}

// Parameters returns the head's parameters.
func (r *Reparameterization) Parameters() []*anydiff.Var {
	return anynet.AllParameters(r.Base, r.Mu, r.Sigma)
}

// SerializerType returns the unique ID used to serialize
// a Reparameterization head with the serializer package.
func (r *Reparameterization) SerializerType() string {
	return "github.com/nighood/cardvac/vachead.Reparameterization"
}

// Serialize serializes the head.
func (r *Reparameterization) Serialize() ([]byte, error) {
	return serializer.SerializeAny(r.Base, r.Mu, r.Sigma)
}
