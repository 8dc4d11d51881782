package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownHandler(t *testing.T) {
	token, err := randomToken(8)
	require.NoError(t, err)
	assert.Len(t, token, 16)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	h := shutdownHandler(token, stop)

	send := func(remote, tok string) int {
		req := httptest.NewRequest(http.MethodPost, "/shutdown", nil)
		req.RemoteAddr = remote
		if tok != "" {
			req.Header.Set("X-Shutdown-Token", tok)
		}
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, send("10.1.2.3:999", token))
	assert.Equal(t, http.StatusUnauthorized, send("127.0.0.1:999", "wrong"))
	require.NoError(t, ctx.Err())

	assert.Equal(t, http.StatusOK, send("127.0.0.1:999", token))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
