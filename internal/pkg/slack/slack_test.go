package slack

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Post(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"channel":"C123","ts":"1700000000.000100"}`)
	}))
	defer srv.Close()

	c := NewClient("xoxb-test", "C123", slack.OptionAPIURL(srv.URL+"/"))

	require.NoError(t, c.Post(context.Background(), "New bill submitted"))
	assert.Equal(t, "C123", form.Get("channel"))
	assert.Equal(t, "New bill submitted", form.Get("text"))
}

func TestClient_PostError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":false,"error":"channel_not_found"}`)
	}))
	defer srv.Close()

	c := NewClient("xoxb-test", "C404", slack.OptionAPIURL(srv.URL+"/"))

	err := c.Post(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}
