package clickhouse

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(ClientConfig{
		Host:         "ch.local",
		Port:         9000,
		Database:     "signals",
		User:         "writer",
		Password:     "p@ss",
		DialTimeout:  5 * time.Second,
		AsyncInsert:  true,
		WaitForAsync: true,
	})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	require.Equal(t, "clickhouse", u.Scheme)
	require.Equal(t, "ch.local:9000", u.Host)
	require.Equal(t, "/signals", u.Path)
	pw, _ := u.User.Password()
	require.Equal(t, "p@ss", pw)
	require.Equal(t, "5s", u.Query().Get("dial_timeout"))
	require.Equal(t, "1", u.Query().Get("wait_for_async_insert"))
	require.Empty(t, u.Query().Get("protocol"))
}

func TestNewClient_RequiresHost(t *testing.T) {
	_, err := NewClient(context.Background())
	require.Error(t, err)
}
