package cardvac

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var a ActionArgHead
	serializer.RegisterTypedDeserializer(a.SerializerType(), DeserializeActionArgHead)
}

// An ActionArgHead scores the argument choices of one action
// type.
//
// Each argument's encoded observation is projected to a key
// vector, the action-type logits are projected and added to
// the observation embedding to form a query, and every key is
// scored against its row's query by dot product.
type ActionArgHead struct {
	// Key projects per-argument features into the embedding
	// space.
	Key *anynet.FC

	// Query projects action-type logits into the embedding
	// space.
	Query *anynet.FC
}

// NewActionArgHead creates a head for arguments carrying
// featSize features apiece, given action-type logits of
// length typeCount and an embedding of hiddenSize.
func NewActionArgHead(c anyvec.Creator, featSize, typeCount, hiddenSize int) *ActionArgHead {
	return &ActionArgHead{
		Key:   anynet.NewFC(c, featSize, hiddenSize),
		Query: anynet.NewFC(c, typeCount, hiddenSize),
	}
}

// DeserializeActionArgHead deserializes an ActionArgHead.
func DeserializeActionArgHead(d []byte) (*ActionArgHead, error) {
	var res ActionArgHead
	if err := serializer.DeserializeAny(d, &res.Key, &res.Query); err != nil {
		return nil, essentials.AddCtx("deserialize ActionArgHead", err)
	}
	return &res, nil
}

// Apply scores each argument choice for every batch row.
//
// The embedding packs hiddenSize components per row, the
// typeLogits pack typeCount components per row, and the
// encodedObs packs each row's arguments as featSize
// components apiece. The result packs one logit per argument
// per row. Mis-sized inputs surface as panics from the
// underlying operations.
func (a *ActionArgHead) Apply(embedding, typeLogits, encodedObs anydiff.Res,
	batch int) anydiff.Res {
	hidden := a.Key.OutCount
	numArgs := encodedObs.Output().Len() / (batch * a.Key.InCount)
	keys := a.Key.Apply(encodedObs, batch*numArgs)
	query := anydiff.Add(a.Query.Apply(typeLogits, batch), embedding)
	queries := repeatRows(query, batch, hidden, numArgs)
	return anydiff.SumCols(&anydiff.Matrix{
		Data: anydiff.Mul(keys, queries),
		Rows: batch * numArgs,
		Cols: hidden,
	})
}

// Parameters returns the head's parameters.
func (a *ActionArgHead) Parameters() []*anydiff.Var {
	return anynet.AllParameters(a.Key, a.Query)
}

// SerializerType returns the unique ID used to serialize an
// ActionArgHead with the serializer package.
func (a *ActionArgHead) SerializerType() string {
	return "github.com/nighood/cardvac.ActionArgHead"
}

// Serialize serializes the head.
func (a *ActionArgHead) Serialize() ([]byte, error) {
	return serializer.SerializeAny(a.Key, a.Query)
}

// repeatRows repeats each row of a rows-by-cols matrix n
// times consecutively by multiplying with a constant 0-1
// expander matrix.
func repeatRows(m anydiff.Res, rows, cols, n int) anydiff.Res {
	c := m.Output().Creator()
	data := make([]float64, rows*n*rows)
	for i := 0; i < rows*n; i++ {
		data[i*rows+i/n] = 1
	}
	expander := c.MakeVector(len(data))
	expander.SetData(c.MakeNumericList(data))
	product := anydiff.MatMul(false, false,
		&anydiff.Matrix{Data: anydiff.NewConst(expander), Rows: rows * n, Cols: rows},
		&anydiff.Matrix{Data: m, Rows: rows, Cols: cols})
	return product.Data
}
