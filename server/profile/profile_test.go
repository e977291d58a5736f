package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	t.Run("sqlite defaults its dsn", func(t *testing.T) {
		p := &Profile{Driver: "sqlite"}
		assert.NoError(t, p.Validate())
		assert.Equal(t, "sorted.db", p.DSN)
	})

	t.Run("postgres requires a dsn", func(t *testing.T) {
		p := &Profile{Driver: "postgres"}
		assert.Error(t, p.Validate())
		p.DSN = "postgres://localhost/sorted"
		assert.NoError(t, p.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		p := &Profile{Driver: "oracle"}
		assert.Error(t, p.Validate())
	})
}

func TestIsDev(t *testing.T) {
	assert.True(t, (&Profile{Mode: "dev"}).IsDev())
	assert.True(t, (&Profile{}).IsDev())
	assert.False(t, (&Profile{Mode: "prod"}).IsDev())
}

func TestListenAddr(t *testing.T) {
	p := &Profile{Addr: "127.0.0.1", Port: 8081}
	assert.Equal(t, "127.0.0.1:8081", p.ListenAddr())
	p = &Profile{Port: 8081}
	assert.Equal(t, ":8081", p.ListenAddr())
}
