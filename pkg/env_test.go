package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetenv(t *testing.T) {
	const key = "SETTLEMENT_TEST_GETENV"

	t.Run("unset key falls back to default", func(t *testing.T) {
		assert.Equal(t, "fallback", Getenv(key+"_MISSING", "fallback"))
	})
	t.Run("empty value is kept", func(t *testing.T) {
		t.Setenv(key, "")
		assert.Empty(t, Getenv(key, "fallback"))
	})
	t.Run("value is returned", func(t *testing.T) {
		t.Setenv(key, "/etc/settlement/config.yml")
		assert.Equal(t, "/etc/settlement/config.yml", Getenv(key, "fallback"))
	})
}
