package hedge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/North-Shore-AI/crucible-hedging/strategy"
)

func TestBuilderDefaults(t *testing.T) {
	cfg, err := NewBuilder(strategy.Off).Build()
	assert.NoError(t, err)
	assert.Equal(t, 1, cfg.MaxHedges)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.EnableCancellation)
}

func TestBuilderRejectsNegativeTimeout(t *testing.T) {
	_, err := NewBuilder(strategy.Off).WithTimeout(-1).Build()
	assert.Error(t, err)
}

func TestBuilderStrategyNameDefaultsToKind(t *testing.T) {
	cfg, err := NewBuilder(strategy.Off).Build()
	assert.NoError(t, err)
	assert.Equal(t, string(strategy.Off), cfg.strategyName())
}

func TestBuilderWithStrategyNameOverrides(t *testing.T) {
	cfg, err := NewBuilder(strategy.Off).WithStrategyName("primary-llm").Build()
	assert.NoError(t, err)
	assert.Equal(t, "primary-llm", cfg.strategyName())
}

func TestConfigRegistryDefaultsToPackageDefault(t *testing.T) {
	cfg, err := NewBuilder(strategy.Off).Build()
	assert.NoError(t, err)
	assert.Same(t, strategy.DefaultRegistry, cfg.registry())
}

func TestConfigRegistryUsesProvided(t *testing.T) {
	custom := strategy.NewRegistry()
	cfg, err := NewBuilder(strategy.Off).WithRegistry(custom).Build()
	assert.NoError(t, err)
	assert.Same(t, custom, cfg.registry())
}
