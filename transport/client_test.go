package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_Stream_ScansUpstreamFrames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("data: {\"phase\":\"answer\",\"delta_content\":\"hi\"}\n\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", nil)
	scanner, resp, err := client.Stream(context.Background(), map[string]any{"model": "glm-test"})
	require.NoError(t, err)
	defer resp.Body.Close()

	payload, err := scanner.Next()
	require.NoError(t, err)
	require.JSONEq(t, `{"phase":"answer","delta_content":"hi"}`, payload)

	_, err = scanner.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestClient_Stream_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", nil)
	_, _, err := client.Stream(context.Background(), map[string]any{})
	require.Error(t, err)
}
