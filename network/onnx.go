package network

import (
	"fmt"
	"path/filepath"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig describes how to build inference sessions from ONNX weights.
// The model is expected to take a [batch, FeatureSize] float32 input and
// produce [batch, PolicySize] policy logits plus a [batch, 1] value head.
type ONNXConfig struct {
	// LibraryPath locates the onnxruntime shared library. Needed once per
	// process before the first session is created.
	LibraryPath string `yaml:"library_path"`
	InputName   string `yaml:"input_name"`
	PolicyName  string `yaml:"policy_name"`
	ValueName   string `yaml:"value_name"`
	// MaxBatch is the fixed batch dimension of the session tensors. Batches
	// beyond this size fail; smaller batches are padded.
	MaxBatch int `yaml:"max_batch"`
}

// InitRuntime loads the onnxruntime shared library. Idempotent.
func InitRuntime(libraryPath string) error {
	if ort.IsInitialized() {
		return nil
	}
	absPath, err := filepath.Abs(libraryPath)
	if err != nil {
		return fmt.Errorf("resolve onnxruntime library path: %w", err)
	}
	ort.SetSharedLibraryPath(absPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

type onnxNetwork struct {
	session *ort.AdvancedSession

	// Persistent tensors, sized for MaxBatch rows. The session reads and
	// writes their backing slices in place on every Run.
	input   *ort.Tensor[float32]
	policy  *ort.Tensor[float32]
	value   *ort.Tensor[float32]
	maxRows int
}

// ONNXLoader returns a Loader that builds CPU inference sessions for the
// given dimensions. InitRuntime must have succeeded beforehand.
func ONNXLoader(cfg ONNXConfig, dims InferConfig) Loader {
	return func(w Weights) (Network, error) {
		return newONNXNetwork(cfg, dims, w)
	}
}

func newONNXNetwork(cfg ONNXConfig, dims InferConfig, w Weights) (*onnxNetwork, error) {
	if !ort.IsInitialized() {
		return nil, fmt.Errorf("onnxruntime environment is not initialized")
	}
	rows := int64(cfg.MaxBatch)

	input, err := ort.NewTensor(ort.NewShape(rows, int64(dims.FeatureSize)), make([]float32, cfg.MaxBatch*dims.FeatureSize))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	policy, err := ort.NewTensor(ort.NewShape(rows, int64(dims.PolicySize)), make([]float32, cfg.MaxBatch*dims.PolicySize))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("create policy tensor: %w", err)
	}
	value, err := ort.NewTensor(ort.NewShape(rows, 1), make([]float32, cfg.MaxBatch))
	if err != nil {
		input.Destroy()
		policy.Destroy()
		return nil, fmt.Errorf("create value tensor: %w", err)
	}

	session, err := ort.NewAdvancedSessionWithONNXData(w,
		[]string{cfg.InputName},
		[]string{cfg.PolicyName, cfg.ValueName},
		[]ort.Value{input},
		[]ort.Value{policy, value},
		nil)
	if err != nil {
		input.Destroy()
		policy.Destroy()
		value.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &onnxNetwork{
		session: session,
		input:   input,
		policy:  policy,
		value:   value,
		maxRows: cfg.MaxBatch,
	}, nil
}

func (n *onnxNetwork) InferBatch(inputs [][]float32, cfg InferConfig) ([]Output, error) {
	if len(inputs) > n.maxRows {
		return nil, fmt.Errorf("batch of %d exceeds session capacity %d", len(inputs), n.maxRows)
	}
	flat, err := flatten(inputs, cfg.FeatureSize)
	if err != nil {
		return nil, err
	}

	data := n.input.GetData()
	copy(data, flat)
	// Zero the padding rows so stale activations from the previous batch
	// cannot leak into batch statistics.
	for i := len(flat); i < len(data); i++ {
		data[i] = 0
	}

	if err := n.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx inference: %w", err)
	}

	policyData := n.policy.GetData()
	valueData := n.value.GetData()
	outputs := make([]Output, len(inputs))
	for i := range outputs {
		row := make([]float32, cfg.PolicySize)
		copy(row, policyData[i*cfg.PolicySize:(i+1)*cfg.PolicySize])
		outputs[i] = Output{Policy: row, Value: valueData[i]}
	}
	return outputs, nil
}

func (n *onnxNetwork) Close() error {
	n.session.Destroy()
	n.input.Destroy()
	n.policy.Destroy()
	n.value.Destroy()
	return nil
}
