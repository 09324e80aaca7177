package telegram

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSend_PostsMessage(t *testing.T) {
	var got map[string]any
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("content-type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	n := New(Options{Token: "123:abc", ChatID: "42", BaseURL: srv.URL, Logger: quiet()})

	ok := n.Send(context.Background(), "Tennis court booked!\n\nCourt: <Court 1>")

	assert.True(t, ok)
	assert.Equal(t, "/bot123:abc/sendMessage", path)
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Equal(t, "Tennis court booked!\n\nCourt: &lt;Court 1&gt;", got["text"])
}

func TestSend_ReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	n := New(Options{Token: "t", ChatID: "c", BaseURL: srv.URL, Logger: quiet()})
	assert.False(t, n.Send(context.Background(), "hi"))
}

func TestSend_OKFalseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"bot was blocked"}`))
	}))
	defer srv.Close()

	n := New(Options{Token: "t", ChatID: "c", BaseURL: srv.URL, Logger: quiet()})
	assert.False(t, n.Send(context.Background(), "hi"))
}

func TestSend_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := New(Options{Token: "t", ChatID: "c", BaseURL: srv.URL, Logger: quiet(),
		FailureThreshold: 2, OpenFor: time.Hour})

	for i := 0; i < 5; i++ {
		assert.False(t, n.Send(context.Background(), "hi"))
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestSend_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	n := New(Options{Token: "secret-token", ChatID: "c", BaseURL: base, Logger: quiet()})
	assert.False(t, n.Send(context.Background(), "hi"))
}
