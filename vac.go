package cardvac

import (
	"fmt"
	"sort"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"

	"github.com/nighood/cardvac/vachead"
)

// A Mode selects which outputs Forward computes.
type Mode int

const (
	// ActorMode computes an action-type and action-argument
	// choice.
	ActorMode Mode = iota

	// CriticMode computes the state-value estimate.
	CriticMode

	// ActorCriticMode computes both.
	ActorCriticMode
)

var modeNames = map[Mode]string{
	ActorMode:       "compute_actor",
	CriticMode:      "compute_critic",
	ActorCriticMode: "compute_actor_critic",
}

// String returns the mode's name.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// A Config holds the construction parameters for a
// GenshinVAC.
type Config struct {
	// ObsEmbeddingSize is the size of the observation
	// embedding, and with it the size of the attention keys
	// and queries.
	ObsEmbeddingSize int

	// Space describes the action surface.
	Space ActionSpace

	// EncodedObsSizes gives the per-argument feature size of
	// each encoded-obs region used by an argument head.
	EncodedObsSizes map[string]int

	// CriticHiddenSize is the critic's hidden layer size.
	// A value of 0 means 64.
	CriticHiddenSize int

	// CriticLayers is the critic's hidden layer count.
	// A value of 0 means 1.
	CriticLayers int

	// Activation is the hidden activation of the critic and
	// action-type heads. A nil value means anynet.ReLU.
	Activation anynet.Layer

	// Normalize adds a LayerNorm to each hidden layer.
	Normalize bool
}

func (c *Config) criticHiddenSize() int {
	if c.CriticHiddenSize == 0 {
		return 64
	}
	return c.CriticHiddenSize
}

func (c *Config) criticLayers() int {
	if c.CriticLayers == 0 {
		return 1
	}
	return c.CriticLayers
}

func (c *Config) activation() anynet.Layer {
	if c.Activation == nil {
		return anynet.ReLU
	}
	return c.Activation
}

// GenshinVAC is the actor-critic policy head of a card-game
// agent: a shared value head, an action-type head, and one
// argument head per action type that takes arguments.
type GenshinVAC struct {
	// ObsEmbeddingSize is the per-row size of every
	// observation embedding fed to the model.
	ObsEmbeddingSize int

	// NumTypes is the number of action types the type head
	// scores.
	NumTypes int

	Critic   *vachead.Regression
	TypeHead *vachead.Discrete
	ArgHeads map[ActionType]*ActionArgHead
}

// NewGenshinVAC creates a model per the configuration.
//
// An argument head is created for every action type in
// cfg.Space.ArgActions except ElementalHarmony and EndRound,
// which take no arguments. Every remaining arg action must
// have its region's feature size in cfg.EncodedObsSizes.
func NewGenshinVAC(c anyvec.Creator, cfg Config) (vac *GenshinVAC, err error) {
	defer essentials.AddCtxTo("new model", &err)
	if cfg.ObsEmbeddingSize <= 0 {
		return nil, fmt.Errorf("embedding size should be positive, but got %d",
			cfg.ObsEmbeddingSize)
	}
	hidden := cfg.ObsEmbeddingSize
	numTypes := cfg.Space.numTypes()
	vac = &GenshinVAC{
		ObsEmbeddingSize: hidden,
		NumTypes:         numTypes,
		Critic: vachead.NewRegression(c, hidden, cfg.criticHiddenSize(),
			cfg.criticLayers(), cfg.activation(), cfg.Normalize),
		TypeHead: vachead.NewDiscrete(c, hidden, hidden, numTypes, 1,
			cfg.activation(), cfg.Normalize),
		ArgHeads: map[ActionType]*ActionArgHead{},
	}
	for _, action := range cfg.Space.ArgActions {
		if noArgActions[action] {
			continue
		}
		if _, ok := vac.ArgHeads[action]; ok {
			continue
		}
		key, ok := ObsKeyForAction(action)
		if !ok {
			return nil, fmt.Errorf("no encoded obs key for action type %v", action)
		}
		featSize, ok := cfg.EncodedObsSizes[key]
		if !ok {
			return nil, fmt.Errorf("missing encoded obs size for %q", key)
		}
		vac.ArgHeads[action] = NewActionArgHead(c, featSize, numTypes, hidden)
	}
	return vac, nil
}

// An ActorOut holds the actor outputs: the batched logits
// plus the selected action.
type ActorOut struct {
	TypeLogits anydiff.Res
	ArgLogits  anydiff.Res

	Action ActionType
	Arg    int
}

// A ForwardIn bundles the per-call inputs of Forward.
// CriticMode reads only the embedding.
type ForwardIn struct {
	ObsEmbedding anydiff.Res
	EncodedObs   map[string]anydiff.Res
	Sample       SampleMode
}

// A ForwardOut holds the outputs of Forward. Value is set by
// CriticMode and ActorCriticMode; Actor is set by ActorMode
// and ActorCriticMode.
type ForwardOut struct {
	Value anydiff.Res
	Actor *ActorOut
}

var forwardModes = map[Mode]func(*GenshinVAC, *ForwardIn) (*ForwardOut, error){
	ActorMode:       (*GenshinVAC).forwardActor,
	CriticMode:      (*GenshinVAC).forwardCritic,
	ActorCriticMode: (*GenshinVAC).forwardActorCritic,
}

// Forward runs the compute method selected by mode.
func (g *GenshinVAC) Forward(mode Mode, in *ForwardIn) (*ForwardOut, error) {
	fn, ok := forwardModes[mode]
	if !ok {
		return nil, fmt.Errorf("forward mode should be %v, %v or %v, but got %v",
			ActorMode, CriticMode, ActorCriticMode, mode)
	}
	return fn(g, in)
}

func (g *GenshinVAC) forwardActor(in *ForwardIn) (*ForwardOut, error) {
	actor, err := g.ComputeActor(in.ObsEmbedding, in.EncodedObs, in.Sample)
	if err != nil {
		return nil, err
	}
	return &ForwardOut{Actor: actor}, nil
}

func (g *GenshinVAC) forwardCritic(in *ForwardIn) (*ForwardOut, error) {
	return &ForwardOut{Value: g.ComputeCritic(in.ObsEmbedding)}, nil
}

func (g *GenshinVAC) forwardActorCritic(in *ForwardIn) (*ForwardOut, error) {
	return g.ComputeActorCritic(in.ObsEmbedding, in.EncodedObs, in.Sample)
}

// ComputeCritic estimates the state value of each batch row
// of the embedding.
func (g *GenshinVAC) ComputeCritic(obsEmbedding anydiff.Res) anydiff.Res {
	return g.Critic.Apply(obsEmbedding, g.batchSize(obsEmbedding))
}

// ComputeActor picks an action type and an argument for one
// game state.
//
// The embedding and the encoded-obs regions may be batched;
// the returned logits keep the batch, while the selection
// treats the flattened logits as a single decision. Action
// types without an argument head (ElementalHarmony, EndRound,
// or types left out of the action space) yield an error, so
// callers handle argument-less types before invoking the
// actor.
func (g *GenshinVAC) ComputeActor(obsEmbedding anydiff.Res,
	encodedObs map[string]anydiff.Res, sample SampleMode) (out *ActorOut, err error) {
	defer essentials.AddCtxTo("compute actor", &err)
	if !sample.valid() {
		return nil, fmt.Errorf("sample mode should be %q or %q, but got %v",
			SampleArgmax, SampleNormal, sample)
	}
	batch := g.batchSize(obsEmbedding)
	typeLogits := g.TypeHead.Apply(obsEmbedding, batch)
	typeIdx, err := sample.pick(typeLogits.Output())
	if err != nil {
		return nil, err
	}
	action := ActionType(typeIdx)
	head, ok := g.ArgHeads[action]
	if !ok {
		return nil, fmt.Errorf("action type %v has no argument head", action)
	}
	obsKey, _ := ObsKeyForAction(action)
	encoded, ok := encodedObs[obsKey]
	if !ok {
		return nil, fmt.Errorf("missing encoded obs %q", obsKey)
	}
	argLogits := head.Apply(obsEmbedding, typeLogits, encoded, batch)
	argIdx, err := sample.pick(argLogits.Output())
	if err != nil {
		return nil, err
	}
	return &ActorOut{
		TypeLogits: typeLogits,
		ArgLogits:  argLogits,
		Action:     action,
		Arg:        argIdx,
	}, nil
}

// ComputeActorCritic runs the critic and the actor together
// on the same inputs.
func (g *GenshinVAC) ComputeActorCritic(obsEmbedding anydiff.Res,
	encodedObs map[string]anydiff.Res, sample SampleMode) (*ForwardOut, error) {
	value := g.ComputeCritic(obsEmbedding)
	actor, err := g.ComputeActor(obsEmbedding, encodedObs, sample)
	if err != nil {
		return nil, err
	}
	return &ForwardOut{Value: value, Actor: actor}, nil
}

// Parameters returns the model's parameters in a fixed
// order: critic, type head, then argument heads by ascending
// action type.
func (g *GenshinVAC) Parameters() []*anydiff.Var {
	res := anynet.AllParameters(g.Critic, g.TypeHead)
	for _, action := range g.argActions() {
		res = append(res, g.ArgHeads[action].Parameters()...)
	}
	return res
}

// Copy creates a deep copy of the model by serializing and
// deserializing each head.
func (g *GenshinVAC) Copy() (*GenshinVAC, error) {
	res := &GenshinVAC{
		ObsEmbeddingSize: g.ObsEmbeddingSize,
		NumTypes:         g.NumTypes,
		ArgHeads:         map[ActionType]*ActionArgHead{},
	}
	critic, err := serializer.Copy(g.Critic)
	if err != nil {
		return nil, essentials.AddCtx("copy model critic", err)
	}
	res.Critic = critic.(*vachead.Regression)
	typeHead, err := serializer.Copy(g.TypeHead)
	if err != nil {
		return nil, essentials.AddCtx("copy model type head", err)
	}
	res.TypeHead = typeHead.(*vachead.Discrete)
	for action, head := range g.ArgHeads {
		copied, err := serializer.Copy(head)
		if err != nil {
			return nil, essentials.AddCtx("copy model "+action.String()+" head", err)
		}
		res.ArgHeads[action] = copied.(*ActionArgHead)
	}
	return res, nil
}

func (g *GenshinVAC) argActions() []ActionType {
	actions := make([]ActionType, 0, len(g.ArgHeads))
	for action := range g.ArgHeads {
		actions = append(actions, action)
	}
	sort.Slice(actions, func(i, j int) bool {
		return actions[i] < actions[j]
	})
	return actions
}

func (g *GenshinVAC) batchSize(embedding anydiff.Res) int {
	if embedding.Output().Len()%g.ObsEmbeddingSize != 0 {
		panic("embedding size must divide input length")
	}
	return embedding.Output().Len() / g.ObsEmbeddingSize
}
