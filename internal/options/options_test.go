package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	level int
	name  string
}

func withLevel(level int) Option[*testConfig] {
	return New(func(c *testConfig) error {
		if level < 0 {
			return errors.New("level cannot be negative")
		}
		c.level = level

		return nil
	})
}

func withName(name string) Option[*testConfig] {
	return NoError(func(c *testConfig) {
		c.name = name
	})
}

func TestApply(t *testing.T) {
	t.Run("applies in order", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, withLevel(3), withName("a"), withName("b"))
		require.NoError(t, err)
		require.Equal(t, 3, cfg.level)
		require.Equal(t, "b", cfg.name)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, withName("a"), withLevel(-1), withName("b"))
		require.Error(t, err)
		require.Equal(t, "a", cfg.name)
	})

	t.Run("skips nil options", func(t *testing.T) {
		cfg := &testConfig{}
		var none Func[*testConfig]
		require.NoError(t, Apply(cfg, nil, none, withLevel(1)))
		require.Equal(t, 1, cfg.level)
	})

	t.Run("func literal is an option", func(t *testing.T) {
		cfg := &testConfig{}
		double := Func[*testConfig](func(c *testConfig) error {
			c.level *= 2
			return nil
		})
		require.NoError(t, Apply(cfg, withLevel(4), double))
		require.Equal(t, 8, cfg.level)
	})
}
