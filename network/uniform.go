package network

// UniformNetwork predicts a uniform policy and a fixed value for every
// input. It stands in for a real model in tests and smoke runs.
type UniformNetwork struct {
	Value float32
}

// UniformLoader returns a Loader that ignores the weights and yields a
// UniformNetwork.
func UniformLoader(value float32) Loader {
	return func(Weights) (Network, error) {
		return &UniformNetwork{Value: value}, nil
	}
}

func (n *UniformNetwork) InferBatch(inputs [][]float32, cfg InferConfig) ([]Output, error) {
	if _, err := flatten(inputs, cfg.FeatureSize); err != nil {
		return nil, err
	}
	outputs := make([]Output, len(inputs))
	for i := range outputs {
		policy := make([]float32, cfg.PolicySize)
		for j := range policy {
			policy[j] = 1 / float32(cfg.PolicySize)
		}
		outputs[i] = Output{Policy: policy, Value: n.Value}
	}
	return outputs, nil
}

func (n *UniformNetwork) Close() error { return nil }
