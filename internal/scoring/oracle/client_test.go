package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	var gotPrompt, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.Contents[0].Parts[0].Text
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  Score: 85  "}]}}]}`))
	}))
	defer srv.Close()

	text, err := New(srv.URL, "secret").Generate(context.Background(), "rate this")
	require.NoError(t, err)
	assert.Equal(t, "Score: 85", text)
	assert.Equal(t, "rate this", gotPrompt)
	assert.Equal(t, "secret", gotKey)
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"non-2xx", http.StatusTooManyRequests, `{}`, ErrUpstreamStatus},
		{"not json", http.StatusOK, `<html>`, ErrMalformedPayload},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, ErrMalformedPayload},
		{"no parts", http.StatusOK, `{"candidates":[{"content":{"parts":[]}}]}`, ErrMalformedPayload},
		{"blank text", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":" "}]}}]}`, ErrEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, "").Generate(context.Background(), "p")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_RespectsContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := New(srv.URL, "").Generate(ctx, "p")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFake(t *testing.T) {
	f := NewFake("50").On("Enhance", "A better description")

	text, err := f.Generate(context.Background(), "Enhance this")
	require.NoError(t, err)
	assert.Equal(t, "A better description", text)

	text, err = f.Generate(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "50", text)
	assert.Equal(t, int64(2), f.Calls())
}
