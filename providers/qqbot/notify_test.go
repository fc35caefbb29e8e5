package qqbot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"starchart/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildMessage(t *testing.T) {
	msg := BuildMessage(540141579, "1月2日明星势力榜", []string{
		"https://stats.example.com/2024/01/02/cmp.png",
		"https://stats.example.com/20240102/rendered.html",
	})
	require.Len(t, msg.Message, 3)
	assert.Equal(t, "text", msg.Message[0].Type)
	assert.Equal(t, "image", msg.Message[1].Type)
	assert.Equal(t, "https://stats.example.com/2024/01/02/cmp.png", msg.Message[1].Data["file"])
	assert.Equal(t, "text", msg.Message[2].Type)
}

func TestNotifyRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg GroupMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		assert.Equal(t, int64(42), msg.GroupID)
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	n := NewNotifier(&config.Config{NotifyURL: srv.URL, NotifyGroupID: 42}, zap.NewNop())
	n.delay = time.Millisecond

	require.NoError(t, n.Notify(context.Background(), "hello", nil))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestNotifyGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(&config.Config{NotifyURL: srv.URL, NotifyGroupID: 42}, zap.NewNop())
	n.delay = time.Millisecond
	n.attempts = 2

	assert.Error(t, n.Notify(context.Background(), "hello", nil))
}
