package network

import (
	"fmt"
	"os"
	"path/filepath"
)

// WeightsCache resolves model identifiers to serialized weights, reading
// each model file from the model directory at most once. The selection loop
// keeps re-broadcasting the same identifier while it stays best, so the
// cache saves a disk read every interval.
type WeightsCache struct {
	dir   string
	cache map[string]Weights
}

func NewWeightsCache(dir string) *WeightsCache {
	return &WeightsCache{
		dir:   dir,
		cache: make(map[string]Weights),
	}
}

// Load returns the weights for the named model, from cache or disk.
func (c *WeightsCache) Load(name string) (Weights, error) {
	if w, ok := c.cache[name]; ok {
		return w, nil
	}
	// Names come from the store; one containing a path separator would
	// resolve outside the model directory.
	if name == "" || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid model name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return nil, fmt.Errorf("load model %q: %w", name, err)
	}
	c.cache[name] = Weights(data)
	return Weights(data), nil
}
