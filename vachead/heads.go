// Package vachead provides small reusable network heads for
// policy and value models: a regression head, a discrete
// logit head, and a reparameterization head, along with a
// LayerNorm layer for use inside them.
package vachead

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var r Regression
	serializer.RegisterTypedDeserializer(r.SerializerType(), DeserializeRegression)
	var d Discrete
	serializer.RegisterTypedDeserializer(d.SerializerType(), DeserializeDiscrete)
}

// A Regression head maps batched feature vectors to one
// predicted value per batch row.
type Regression struct {
	Net anynet.Net
}

// NewRegression creates a Regression head with the given
// input size, hidden size, and hidden layer count.
//
// If activation is nil, anynet.ReLU is used. If normed is
// true, a LayerNorm follows each hidden layer.
func NewRegression(c anyvec.Creator, in, hidden, layers int, activation anynet.Layer,
	normed bool) *Regression {
	return &Regression{Net: headNet(c, in, hidden, 1, layers, activation, normed)}
}

// DeserializeRegression deserializes a Regression head.
func DeserializeRegression(d []byte) (*Regression, error) {
	var net anynet.Net
	if err := serializer.DeserializeAny(d, &net); err != nil {
		return nil, essentials.AddCtx("deserialize Regression", err)
	}
	return &Regression{Net: net}, nil
}

// Apply computes one value per batch row.
func (r *Regression) Apply(in anydiff.Res, n int) anydiff.Res {
	return r.Net.Apply(in, n)
}

// Parameters returns the head's parameters.
func (r *Regression) Parameters() []*anydiff.Var {
	return r.Net.Parameters()
}

// SerializerType returns the unique ID used to serialize
// a Regression head with the serializer package.
func (r *Regression) SerializerType() string {
	return "github.com/nighood/cardvac/vachead.Regression"
}

// Serialize serializes the head.
func (r *Regression) Serialize() ([]byte, error) {
	return serializer.SerializeAny(r.Net)
}

// A Discrete head maps batched feature vectors to a logit
// vector per batch row.
type Discrete struct {
	Net anynet.Net
}

// NewDiscrete creates a Discrete head producing numActions
// logits per batch row.
//
// The activation and normed arguments behave as they do for
// NewRegression.
func NewDiscrete(c anyvec.Creator, in, hidden, numActions, layers int,
	activation anynet.Layer, normed bool) *Discrete {
	return &Discrete{Net: headNet(c, in, hidden, numActions, layers, activation, normed)}
}

// DeserializeDiscrete deserializes a Discrete head.
func DeserializeDiscrete(d []byte) (*Discrete, error) {
	var net anynet.Net
	if err := serializer.DeserializeAny(d, &net); err != nil {
		return nil, essentials.AddCtx("deserialize Discrete", err)
	}
	return &Discrete{Net: net}, nil
}

// Apply computes the logits for a batch of inputs.
func (d *Discrete) Apply(in anydiff.Res, n int) anydiff.Res {
	return d.Net.Apply(in, n)
}

// Parameters returns the head's parameters.
func (d *Discrete) Parameters() []*anydiff.Var {
	return d.Net.Parameters()
}

// SerializerType returns the unique ID used to serialize
// a Discrete head with the serializer package.
func (d *Discrete) SerializerType() string {
	return "github.com/nighood/cardvac/vachead.Discrete"
}

// Serialize serializes the head.
func (d *Discrete) Serialize() ([]byte, error) {
	return serializer.SerializeAny(d.Net)
}

func headNet(c anyvec.Creator, in, hidden, out, layers int, activation anynet.Layer,
	normed bool) anynet.Net {
	net, cur := hiddenNet(c, in, hidden, layers, activation, normed)
	return append(net, anynet.NewFC(c, cur, out))
}

// hiddenNet builds the hidden trunk of a head and reports
// the trunk's output size.
func hiddenNet(c anyvec.Creator, in, hidden, layers int, activation anynet.Layer,
	normed bool) (anynet.Net, int) {
	if layers <= 0 {
		panic("layer count must be positive")
	}
	if activation == nil {
		activation = anynet.ReLU
	}
	var net anynet.Net
	cur := in
	for i := 0; i < layers; i++ {
		net = append(net, anynet.NewFC(c, cur, hidden))
		if normed {
			net = append(net, NewLayerNorm(c, hidden))
		}
		net = append(net, activation)
		cur = hidden
	}
	return net, cur
}
