package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDSN(t *testing.T) {
	t.Run("enables found-rows reporting", func(t *testing.T) {
		cfg, err := parseDSN("user:pass@tcp(localhost:3306)/sorted")
		require.NoError(t, err)
		assert.True(t, cfg.ClientFoundRows)
		assert.Equal(t, "sorted", cfg.DBName)
	})

	t.Run("keeps caller options", func(t *testing.T) {
		cfg, err := parseDSN("user:pass@tcp(localhost:3306)/sorted?parseTime=true")
		require.NoError(t, err)
		assert.True(t, cfg.ClientFoundRows)
		assert.True(t, cfg.ParseTime)
	})

	t.Run("rejects malformed dsn", func(t *testing.T) {
		_, err := parseDSN("not a dsn at all (")
		assert.Error(t, err)
	})
}
