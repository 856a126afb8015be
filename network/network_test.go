package network

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniformNetwork(t *testing.T) {
	t.Run("one output per input with uniform policy", func(t *testing.T) {
		net := &UniformNetwork{Value: 0.5}
		cfg := InferConfig{FeatureSize: 2, PolicySize: 4}

		outputs, err := net.InferBatch([][]float32{{1, 2}, {3, 4}, {5, 6}}, cfg)

		require.NoError(t, err)
		require.Len(t, outputs, 3)
		for _, out := range outputs {
			require.Equal(t, float32(0.5), out.Value)
			require.Len(t, out.Policy, 4)
			for _, p := range out.Policy {
				require.InDelta(t, 0.25, p, 1e-6)
			}
		}
	})

	t.Run("rejects inputs with the wrong feature size", func(t *testing.T) {
		net := &UniformNetwork{}
		cfg := InferConfig{FeatureSize: 2, PolicySize: 4}

		_, err := net.InferBatch([][]float32{{1, 2, 3}}, cfg)

		require.Error(t, err)
	})
}

func TestWeightsCache(t *testing.T) {
	t.Run("reads a model file once and caches it", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "gen0001.onnx")
		require.NoError(t, os.WriteFile(path, []byte("weights"), 0644))

		cache := NewWeightsCache(dir)

		w, err := cache.Load("gen0001.onnx")
		require.NoError(t, err)
		require.Equal(t, Weights("weights"), w)

		// A second load must not touch the file again.
		require.NoError(t, os.Remove(path))
		w, err = cache.Load("gen0001.onnx")
		require.NoError(t, err)
		require.Equal(t, Weights("weights"), w)
	})

	t.Run("missing model is an error", func(t *testing.T) {
		cache := NewWeightsCache(t.TempDir())

		_, err := cache.Load("nope.onnx")

		require.Error(t, err)
	})

	t.Run("rejects names that leave the model directory", func(t *testing.T) {
		dir := t.TempDir()
		outside := filepath.Join(dir, "secret")
		require.NoError(t, os.WriteFile(outside, []byte("secret"), 0644))

		cache := NewWeightsCache(filepath.Join(dir, "models"))

		for _, name := range []string{"../secret", "sub/model.onnx", "/etc/passwd", ""} {
			_, err := cache.Load(name)
			require.Error(t, err, "name %q must not resolve to a file", name)
		}
	})
}
