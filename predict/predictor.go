package predict

import (
	"fmt"

	"craft/network"
)

// Predictor owns the loaded networks of one worker and the shared
// pending-request table. Not safe for concurrent use: one predictor
// belongs to exactly one worker goroutine.
type Predictor struct {
	load     network.Loader
	networks map[string]network.Network
	pending  map[string][]request
}

func New(load network.Loader) *Predictor {
	return &Predictor{
		load:     load,
		networks: make(map[string]network.Network),
		pending:  make(map[string][]request),
	}
}

// Queue returns a handle onto the predictor's pending-request table.
func (p *Predictor) Queue() Queue {
	return Queue{pending: p.pending}
}

// LoadNetwork registers weights under an identifier. Idempotent: loading an
// already-present identifier is a no-op. Weights never change under a live
// identifier; a new model version gets a new identifier.
func (p *Predictor) LoadNetwork(id string, w network.Weights) error {
	if _, ok := p.networks[id]; ok {
		return nil
	}
	net, err := p.load(w)
	if err != nil {
		return fmt.Errorf("load network %q: %w", id, err)
	}
	p.networks[id] = net
	return nil
}

// Flush executes every pending request. For each model identifier it takes
// the entire accumulated list, runs one batched inference call, and
// resolves each future with the output at its input's position. The table
// is cleared afterwards; flush only ever runs between executor poll
// rounds, so no request can arrive mid-flush.
//
// A pending identifier with no loaded network is an orchestration bug, not
// a runtime condition: Flush panics.
func (p *Predictor) Flush(cfg network.InferConfig) error {
	for id, reqs := range p.pending {
		net, ok := p.networks[id]
		if !ok {
			panic(fmt.Sprintf("predict: no network loaded for %q", id))
		}

		inputs := make([][]float32, len(reqs))
		for i, r := range reqs {
			inputs[i] = r.input
		}
		outputs, err := net.InferBatch(inputs, cfg)
		if err != nil {
			return fmt.Errorf("infer batch for %q: %w", id, err)
		}
		for i, r := range reqs {
			r.fut.resolve(outputs[i])
		}
	}
	clear(p.pending)
	return nil
}

// Close releases every loaded network.
func (p *Predictor) Close() error {
	for _, net := range p.networks {
		if err := net.Close(); err != nil {
			return err
		}
	}
	return nil
}
