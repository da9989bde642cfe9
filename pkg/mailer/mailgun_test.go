package mailer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailgun_SendPostsRenderedMessage(t *testing.T) {
	var path string
	form := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = r.ParseMultipartForm(1 << 20)
		for _, k := range []string{"from", "to", "subject", "text", "html", "o:tag"} {
			form[k] = r.FormValue(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<123@mg.example.com>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	m := NewMailgun("mg.example.com", "key-test", "Recipes <no-reply@mg.example.com>", srv.URL+"/v3")
	msg, err := EmailJob{To: "ana@example.com", Template: TemplateWelcome, Data: map[string]any{"Name": "Ana"}}.Render()
	require.NoError(t, err)

	id, err := m.Send(context.Background(), msg)
	require.NoError(t, err)

	assert.Equal(t, "<123@mg.example.com>", id)
	assert.Equal(t, "/v3/mg.example.com/messages", path)
	assert.Equal(t, "ana@example.com", form["to"])
	assert.Equal(t, msg.Subject, form["subject"])
	assert.Equal(t, TemplateWelcome, form["o:tag"])
	assert.NotEmpty(t, form["html"])
}

func TestMailgun_SendReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"forbidden"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := NewMailgun("mg.example.com", "key-test", "no-reply@mg.example.com", srv.URL+"/v3")
	_, err := m.Send(context.Background(), Message{To: "ana@example.com", Subject: "Hi", Text: "Hello"})
	assert.Error(t, err)
}
