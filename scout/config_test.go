package scout

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, DefaultParallelThreshold, cfg.ParallelThreshold)
	assert.True(t, cfg.Prefilter)
}

func TestLoadConfig_LayersOverDefaults(t *testing.T) {
	path := writeTemp(t, "scout.yaml", "workers: 2\nprefilter: false\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.False(t, cfg.Prefilter)
	// Omitted fields keep their defaults.
	assert.Equal(t, DefaultParallelThreshold, cfg.ParallelThreshold)
	assert.Equal(t, DefaultSimplifyToleranceDeg, cfg.SimplifyToleranceDeg)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("does-not-exist.yaml")
	require.Error(t, err)
}

func TestConfigNormalized(t *testing.T) {
	cfg := Config{Workers: -1, ParallelThreshold: 0}.normalized()
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, DefaultParallelThreshold, cfg.ParallelThreshold)
}
