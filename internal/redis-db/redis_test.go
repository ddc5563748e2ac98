package redis_db

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/craigmalenga/valifi-batch-sub000/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		skipTLS  bool
		addr     string
		password string
		tls      bool
		wantErr  bool
	}{
		{name: "docker style", url: "redis:6379", addr: "redis:6379"},
		{name: "url with password", url: "redis://:password123@localhost:6379", addr: "localhost:6379", password: "password123"},
		{name: "password without colon", url: "redis://secret@localhost:6379", addr: "localhost:6379", password: "secret"},
		{name: "tls scheme", url: "rediss://:pw@cache.example.com:6380", addr: "cache.example.com:6380", password: "pw", tls: true},
		{name: "bare password fallback", url: "pw@myinstance.redis.cache.windows.net:6380", addr: "myinstance.redis.cache.windows.net:6380", password: "pw", tls: true, skipTLS: true},
		{name: "empty", url: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRedisURL(tt.url, tt.skipTLS)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.addr, got.Addr)
			assert.Equal(t, tt.tls, got.TLSConfig != nil)
			if tt.skipTLS && got.TLSConfig != nil {
				assert.True(t, got.TLSConfig.InsecureSkipVerify)
			}
			assert.Equal(t, tt.password, got.Password)
		})
	}
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	t.Run("empty addresses", func(t *testing.T) {
		_, err := NewRedisClient(nil, false)
		assert.Error(t, err)
	})

	t.Run("single address", func(t *testing.T) {
		client, err := NewRedisClient([]string{mr.Addr()}, false)
		require.NoError(t, err)
		defer client.Close()

		ctx := context.Background()
		require.NoError(t, client.Client().Set(ctx, "k", "v", time.Minute).Err())
		got, err := client.Client().Get(ctx, "k").Result()
		require.NoError(t, err)
		assert.Equal(t, "v", got)
	})

	t.Run("unreachable server", func(t *testing.T) {
		_, err := NewRedisClient([]string{"127.0.0.1:1"}, false)
		assert.Error(t, err)
	})
}

func TestNewClientFromConfig(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(config.RedisConfig{Dns: " " + mr.Addr() + " "})
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Client().Ping(context.Background()).Err())
}

func TestAsynqOpt(t *testing.T) {
	opt, err := AsynqOpt(config.RedisConfig{Dns: "redis://:pw@localhost:6379/2,localhost:6380"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 2, opt.DB)

	_, err = AsynqOpt(config.RedisConfig{})
	assert.Error(t, err)
}
