package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendPostsToBotEndpoint(t *testing.T) {
	t.Parallel()

	var (
		gotPath string
		gotBody map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n, err := New(Config{BotToken: "token123", ChatID: "chat42", BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	require.NoError(t, n.Send(context.Background(), "Kolkata FF Update"))
	require.Equal(t, "/bottoken123/sendMessage", gotPath)
	require.Equal(t, "chat42", gotBody["chat_id"])
	require.Equal(t, "Kolkata FF Update", gotBody["text"])
	require.Equal(t, true, gotBody["disable_web_page_preview"])
}

func TestSendSurfacesAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusForbidden)
	}))
	defer srv.Close()

	n, err := New(Config{BotToken: "t", ChatID: "c", BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	require.Error(t, n.Send(context.Background(), "msg"))
}

func TestNewRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := New(Config{ChatID: "c"}, nil)
	require.Error(t, err)
	_, err = New(Config{BotToken: "t"}, nil)
	require.Error(t, err)
}
