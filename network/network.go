// Package network defines the inference boundary of the generator: loading
// model weights into an executable network and running batched predictions.
package network

import "fmt"

// Weights is an opaque serialized model, as broadcast to worker threads.
type Weights []byte

// Output is one prediction: a move-probability vector over the action
// space and a scalar value estimate.
type Output struct {
	Policy []float32
	Value  float32
}

// InferConfig fixes the tensor dimensions for a batch call. It mirrors the
// rule set: PolicySize = Rules.ActionSpace, FeatureSize = Rules.FeatureSize.
type InferConfig struct {
	FeatureSize int
	PolicySize  int
}

// Network executes batched inference. One output per input, in input order.
type Network interface {
	InferBatch(inputs [][]float32, cfg InferConfig) ([]Output, error)
	Close() error
}

// Loader turns broadcast weights into an executable network. It fails on
// malformed weights.
type Loader func(w Weights) (Network, error)

func flatten(inputs [][]float32, featureSize int) ([]float32, error) {
	flat := make([]float32, len(inputs)*featureSize)
	for i, input := range inputs {
		if len(input) != featureSize {
			return nil, fmt.Errorf("network: input %d has %d features, want %d", i, len(input), featureSize)
		}
		copy(flat[i*featureSize:], input)
	}
	return flat, nil
}
