package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/agentguard/audit"
	"github.com/jonwraymond/agentguard/auth"
	"github.com/jonwraymond/agentguard/config"
	"github.com/jonwraymond/agentguard/health"
	"github.com/jonwraymond/agentguard/secret"
	"github.com/jonwraymond/agentguard/token"
)

const testSecret = "app-test-secret"

func testConfig() config.Config {
	c := config.Default()
	c.Secret.Refs = []string{secret.Ref("properties", token.PropertySecret)}
	c.Observe.Logging.Enabled = false
	c.Audit.Async = false
	c.Audit.Log = false
	c.Audit.Memory = true
	return c
}

func newTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	props := secret.NewProperties()
	props.Set(token.PropertySecret, testSecret)
	a, err := New(context.Background(), cfg, WithProperties(props))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func issue(t *testing.T, a *App, user string, roles, perms []string) string {
	t.Helper()
	tok, err := a.Codec().Encode(context.Background(), token.NewPayload(user, roles, perms, "svc-1", "internal"))
	require.NoError(t, err)
	return tok
}

func TestNew_Wiring(t *testing.T) {
	a := newTestApp(t, testConfig())

	assert.NotNil(t, a.Validator())
	assert.NotNil(t, a.Gate())
	assert.NotNil(t, a.AuditTrail())
	assert.True(t, a.Validator().AllowsAnonymous())
	assert.Equal(t, []string{"signing_key", "decode_cache"}, a.Health().Names())

	tok := issue(t, a, "alice", []string{"ADMIN"}, []string{"AGENT_READ"})
	d := a.Gate().Check(context.Background(), &auth.Request{Security: auth.FromToken(tok), Resource: "/agents"}, auth.RequireRoles(auth.RoleAdmin))
	require.True(t, d.Allowed(), "decision: %+v", d)
	assert.Equal(t, "alice", d.UserID)

	entries := a.AuditTrail().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionAccessGranted, entries[0].Action)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.MaxEntries = -1
	_, err := New(context.Background(), cfg, WithProperties(secret.NewProperties()))
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestNew_CachePolicy(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.MaxEntries = 2
	a := newTestApp(t, cfg)

	for _, u := range []string{"a", "b", "c"} {
		tok := issue(t, a, u, []string{"USER"}, []string{"AGENT_READ"})
		_, err := a.Validator().Authenticate(context.Background(), auth.FromToken(tok))
		require.NoError(t, err)
	}
	stats := a.Validator().CacheStats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 2, stats.Capacity)
	assert.EqualValues(t, 1, stats.Evictions)
}

func TestNew_PropertiesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agent:\n  jwt:\n    secret: from-file\n"), 0o600))

	cfg := testConfig()
	cfg.Secret.PropertiesFile = path
	props := secret.NewProperties()
	a, err := New(context.Background(), cfg, WithProperties(props))
	require.NoError(t, err)
	defer a.Close(context.Background())

	v, ok := props.Get(token.PropertySecret)
	require.True(t, ok)
	assert.Equal(t, "from-file", v)

	r, err := a.Health().Check(context.Background(), "signing_key")
	require.NoError(t, err)
	assert.Equal(t, health.StatusHealthy, r.Status)
}

func TestNew_MissingSecretIsUnhealthy(t *testing.T) {
	a, err := New(context.Background(), testConfig(), WithProperties(secret.NewProperties()))
	require.NoError(t, err)
	defer a.Close(context.Background())

	report := a.Health().Run(context.Background())
	assert.Equal(t, health.StatusUnhealthy, report.Status)
	assert.Equal(t, health.StatusUnhealthy, report.Checks["signing_key"].Status)

	tok := "a.b.c"
	d := a.Gate().Check(context.Background(), &auth.Request{Security: auth.FromToken(tok)}, nil)
	assert.Equal(t, auth.RejectedAuthFailed, d.Outcome)
	assert.Equal(t, auth.ReasonConfiguration, d.Reason)
}

func TestNew_AsyncAudit(t *testing.T) {
	cfg := testConfig()
	cfg.Audit.Async = true
	cfg.Audit.BufferSize = 16
	extra := audit.NewMemorySink()

	props := secret.NewProperties()
	props.Set(token.PropertySecret, testSecret)
	a, err := New(context.Background(), cfg, WithProperties(props), WithAuditSink(extra))
	require.NoError(t, err)
	assert.Contains(t, a.Health().Names(), "audit")

	r, err := a.Health().Check(context.Background(), "audit")
	require.NoError(t, err)
	assert.Equal(t, health.StatusHealthy, r.Status)

	for i := 0; i < 5; i++ {
		a.Gate().Check(context.Background(), &auth.Request{Security: auth.FromToken("bogus")}, nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, a.Close(ctx))
	assert.NoError(t, a.Close(ctx), "Close is idempotent")

	assert.Equal(t, 5, extra.Len())
	assert.Equal(t, 5, a.AuditTrail().Len())
	assert.Equal(t, 5, a.AuditTrail().Report().AuthenticationFailures)
}

func TestRouter(t *testing.T) {
	cfg := testConfig()
	cfg.Authz.AllowAnonymous = false
	cfg.Authz.Resources = map[string]config.Rule{
		"/v1/whoami": {Roles: []string{"USER", "ADMIN"}},
	}
	a := newTestApp(t, cfg)
	srv := httptest.NewServer(a.Router())
	defer srv.Close()

	user := issue(t, a, "bob", []string{"USER"}, []string{"AGENT_READ"})
	auditor := issue(t, a, "carol", []string{"AUDITOR"}, []string{"AUDIT_READ"})

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"liveness", "/healthz", "", http.StatusOK},
		{"readiness", "/readyz", "", http.StatusOK},
		{"whoami anonymous", "/v1/whoami", "", http.StatusUnauthorized},
		{"whoami forged", "/v1/whoami", user + "x", http.StatusUnauthorized},
		{"whoami user", "/v1/whoami", user, http.StatusOK},
		{"whoami auditor", "/v1/whoami", auditor, http.StatusForbidden},
		{"report user", "/v1/audit/report", user, http.StatusForbidden},
		{"report auditor", "/v1/audit/report", auditor, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL+tt.path, nil)
			require.NoError(t, err)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRouter_AnonymousUnderDefaults(t *testing.T) {
	a := newTestApp(t, testConfig())
	require.True(t, a.Validator().AllowsAnonymous())
	srv := httptest.NewServer(a.Router())
	defer srv.Close()

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"whoami anonymous", "/v1/whoami", http.StatusOK},
		{"report anonymous", "/v1/audit/report", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRouter_Whoami(t *testing.T) {
	a := newTestApp(t, testConfig())
	tok := issue(t, a, "dave", []string{"DEVELOPER"}, []string{"AGENT_READ", "AGENT_WRITE"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	a.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var id Identity
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&id))
	assert.Equal(t, Identity{
		UserID:      "dave",
		Roles:       []string{"DEVELOPER"},
		Permissions: []string{"AGENT_READ", "AGENT_WRITE"},
		ServiceID:   "svc-1",
		ServiceType: "internal",
	}, id)
}

func TestRouter_WhoamiAnonymousAllowed(t *testing.T) {
	a := newTestApp(t, testConfig())

	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/whoami", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var id Identity
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&id))
	assert.Equal(t, auth.UnknownUser, id.UserID)
}

func TestRouter_AuditReport(t *testing.T) {
	a := newTestApp(t, testConfig())
	auditor := issue(t, a, "carol", []string{"AUDITOR"}, []string{"AUDIT_READ"})

	a.Gate().Check(context.Background(), &auth.Request{Security: auth.FromToken("nope")}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/audit/report", nil)
	req.Header.Set("Authorization", "Bearer "+auditor)
	a.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report audit.Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.AuthenticationFailures)
	assert.InDelta(t, 50.0, report.AuthenticationCompliance, 0.001)
}

func TestRouter_AuditReportDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Audit.Memory = false
	a := newTestApp(t, cfg)
	admin := issue(t, a, "root", []string{"ADMIN"}, []string{"AGENT_ADMIN"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/audit/report", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	a.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
