package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrevoClient_Send(t *testing.T) {
	var got BrevoSendRequest
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<1@brevo>"}`))
	}))
	defer srv.Close()

	c := &BrevoClient{APIKey: "k", BaseURL: srv.URL}
	err := c.Send(context.Background(), "org@x.com", "Organization Registration Rejected", "Reason: <incomplete>")
	require.NoError(t, err)

	assert.Equal(t, "k", apiKey)
	assert.Equal(t, defaultMailFrom, got.Sender.Email)
	require.Len(t, got.To, 1)
	assert.Equal(t, "org@x.com", got.To[0].Email)
	assert.Equal(t, "Reason: <incomplete>", got.TextContent)
	assert.Contains(t, got.HTMLContent, "Reason: &lt;incomplete&gt;")
}

func TestBrevoClient_SendNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := &BrevoClient{APIKey: "bad", BaseURL: srv.URL}
	err := c.Send(context.Background(), "org@x.com", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestMailgunClient_Send(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<1@mg>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	c := NewMailgunClient("mg.givehub.org", "key-test", "", srv.URL)
	err := c.Send(context.Background(), "org@x.com", "Organization Registration Approved", "password: Ab12Cd")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "/messages"), path)
}

func TestTemplates(t *testing.T) {
	m := OrganizationRequested("admin@givehub.org", "Acme", "a@x.com")
	assert.Equal(t, "admin@givehub.org", m.To)
	assert.Contains(t, m.Body, "Acme")

	m = OrganizationApproved("a@x.com", "Ab12Cd")
	assert.Equal(t, "Organization Registration Approved", m.Subject)
	assert.Contains(t, m.Body, "Ab12Cd")

	m = OrganizationRejected("a@x.com", "incomplete documents")
	assert.Equal(t, "Organization Registration Rejected", m.Subject)
	assert.Contains(t, m.Body, "incomplete documents")

	m = AdminRegisteredNotice("root@givehub.org", "new@givehub.org", "admin")
	assert.Contains(t, m.Body, "new@givehub.org")
	assert.NotContains(t, strings.ToLower(m.Body), "password")
}
