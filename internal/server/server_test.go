package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerLifecycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New("127.0.0.1:0", nil)
	s.Handle("/hello", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "hi")
	}))
	require.NoError(t, s.Start(ctx))
	require.NotNil(t, s.Addr())

	base := "http://" + s.Addr().String()

	resp, err := http.Get(base + "/hello")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "hi", string(body))

	resp, err = http.Get(base + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])
	assert.NotEmpty(t, health["version"])

	require.NoError(t, s.Shutdown(context.Background()))
	_, err = http.Get(base + "/health")
	assert.Error(t, err)
}

func TestHealthRejectsPost(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New("127.0.0.1:0", nil)
	require.NoError(t, s.Start(ctx))

	resp, err := http.Post("http://"+s.Addr().String()+"/health", "text/plain", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStartFailsOnBadAddress(t *testing.T) {
	s := New("256.0.0.1:bad", nil)
	assert.Error(t, s.Start(context.Background()))
	assert.NoError(t, s.Shutdown(context.Background()))
}
