// Package cardvac implements the actor-critic policy head
// of a card-game reinforcement-learning agent: a discrete
// action-type head, per-action argument heads, and a shared
// state-value head.
//
// The model consumes observation embeddings and per-region
// encoded observations produced by an external encoder, and
// leaves training to an external optimizer.
package cardvac
