package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-token", "@testchannel", 2*time.Second)
}

func TestIsChannelMember(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{"member", "member", true},
		{"administrator", "administrator", true},
		{"creator", "creator", true},
		{"left", "left", false},
		{"kicked", "kicked", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.URL.Path, "/bottest-token/getChatMember")
				assert.Equal(t, "@testchannel", r.URL.Query().Get("chat_id"))
				assert.Equal(t, "42", r.URL.Query().Get("user_id"))
				w.Write([]byte(`{"ok":true,"result":{"status":"` + tt.status + `"}}`))
			})
			got, err := c.IsChannelMember(context.Background(), "42")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsChannelMember_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"Bad Request: user not found"}`))
	})
	_, err := c.IsChannelMember(context.Background(), "42")
	assert.ErrorContains(t, err, "user not found")
}

func TestSendDocument(t *testing.T) {
	staged := filepath.Join(t.TempDir(), "staged")
	require.NoError(t, os.WriteFile(staged, []byte("print('hi')"), 0o644))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/bottest-token/sendDocument")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "42", r.FormValue("chat_id"))
		f, hdr, err := r.FormFile("document")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "resizer.lua", hdr.Filename)
		w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	require.NoError(t, c.SendDocument(context.Background(), "42", staged, "resizer.lua"))
}

func TestSendDocument_APIError(t *testing.T) {
	staged := filepath.Join(t.TempDir(), "staged")
	require.NoError(t, os.WriteFile(staged, []byte("x"), 0o644))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"Forbidden: bot was blocked by the user"}`))
	})
	err := c.SendDocument(context.Background(), "42", staged, "resizer.lua")
	assert.ErrorContains(t, err, "blocked")
}

func TestSendDocument_MissingStagedFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected when the staged file is missing")
	})
	err := c.SendDocument(context.Background(), "42", "/nonexistent/path", "resizer.lua")
	assert.Error(t, err)
}
