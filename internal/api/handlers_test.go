package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"teampulse.io/daily-report/internal/config"
	"teampulse.io/daily-report/internal/core"
	"teampulse.io/daily-report/internal/store"
)

type fakeGenerator struct{ out string }

func (f *fakeGenerator) GenerateSummary(context.Context, string) (string, error) {
	return f.out, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	config.AppConfig.JWTSecret = "test-secret"

	kv, err := store.NewFileKV(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	st, err := store.NewLocalStore(kv, store.NewSession())
	require.NoError(t, err)

	reports := core.NewReportService(st, core.SubmitPolicy{})
	summaries := core.NewSummaryService(st, &fakeGenerator{out: "team summary"})

	srv := httptest.NewServer(NewRouter(NewAPIHandler(reports, summaries)))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func signup(t *testing.T, srv *httptest.Server, email, password, name string) AuthResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/signup", "", SignupRequest{
		Email: email, Password: password, Name: name,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[AuthResponse](t, resp)
}

func TestSignupAndLogin(t *testing.T) {
	srv := newTestServer(t)

	auth := signup(t, srv, "jo@example.com", "secret1", "Jo")
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, "jo@example.com", auth.User.Email)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/signup", "", SignupRequest{
			Email: "JO@example.com", Password: "secret1", Name: "Jo Two",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/signup", "", SignupRequest{
			Email: "not-an-email", Password: "secret1", Name: "Jo",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("login with the right password", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/login", "", LoginRequest{
			Email: "JO@EXAMPLE.COM", Password: "secret1",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decode[AuthResponse](t, resp)
		assert.Equal(t, auth.User.ID, got.User.ID)
	})

	t.Run("login with a wrong password", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/login", "", LoginRequest{
			Email: "jo@example.com", Password: "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/login", "", LoginRequest{
			Email: "nobody@example.com", Password: "secret1",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeAndProfileUpdate(t *testing.T) {
	srv := newTestServer(t)
	auth := signup(t, srv, "jo@example.com", "secret1", "Jo")

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/me", auth.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[store.User](t, resp)
	assert.Equal(t, auth.User.ID, me.ID)

	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/me", auth.Token, map[string]string{"name": "  Jo Updated  "})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[store.User](t, resp)
	assert.Equal(t, "Jo Updated", updated.Name)
	assert.Equal(t, "jo@example.com", updated.Email)
}

func TestReportFlow(t *testing.T) {
	srv := newTestServer(t)
	jo := signup(t, srv, "jo@example.com", "secret1", "Jo")
	sam := signup(t, srv, "sam@example.com", "secret1", "Sam")

	submit := func(token, date, achievements string) *http.Response {
		return doJSON(t, http.MethodPut, srv.URL+"/api/reports", token, map[string]string{
			"date":         date,
			"achievements": achievements,
		})
	}

	resp := submit(jo.Token, "2025-06-02", "shipped the exporter")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decode[store.DailyReport](t, resp)

	resp = submit(sam.Token, "2025-06-02", "reviewed the exporter")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("resubmission replaces, same id", func(t *testing.T) {
		resp := submit(jo.Token, "2025-06-02", "rewritten")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		second := decode[store.DailyReport](t, resp)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "rewritten", second.Achievements)
	})

	t.Run("list by date joins author names", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/reports?date=2025-06-02", jo.Token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		reports := decode[[]store.ReportWithAuthor](t, resp)
		require.Len(t, reports, 2)

		names := map[string]bool{}
		for _, r := range reports {
			names[r.AuthorName] = true
		}
		assert.True(t, names["Jo"])
		assert.True(t, names["Sam"])
	})

	t.Run("bad date is rejected", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/reports?date=junk", jo.Token, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("member stats", func(t *testing.T) {
		url := fmt.Sprintf("%s/api/users/%s/stats", srv.URL, jo.User.ID)
		resp := doJSON(t, http.MethodGet, url, jo.Token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		stats := decode[store.ReportStats](t, resp)
		assert.Equal(t, 1, stats.TotalReports)
		require.NotNil(t, stats.LastReportDate)
		assert.Equal(t, "2025-06-02", *stats.LastReportDate)
	})

	t.Run("stats for unknown user", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/users/missing-id/stats", jo.Token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestSummaryFlow(t *testing.T) {
	srv := newTestServer(t)
	jo := signup(t, srv, "jo@example.com", "secret1", "Jo")

	t.Run("no summary yet", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/summaries/2025-06-02", jo.Token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("generating for an empty day fails", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/summaries/2025-06-02", jo.Token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/reports", jo.Token, map[string]string{
		"date": "2025-06-02", "achievements": "a",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("generate then fetch", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/summaries/2025-06-02", jo.Token, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		created := decode[store.AISummary](t, resp)
		assert.Equal(t, "team summary", created.Content)
		assert.Equal(t, 1, created.ReportCount)

		resp = doJSON(t, http.MethodGet, srv.URL+"/api/summaries/2025-06-02", jo.Token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		fetched := decode[store.AISummary](t, resp)
		assert.Equal(t, created.ID, fetched.ID)
	})
}

func TestExportImport(t *testing.T) {
	srv := newTestServer(t)
	jo := signup(t, srv, "jo@example.com", "secret1", "Jo")

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/reports", jo.Token, map[string]string{
		"date": "2025-06-02", "achievements": "a",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/export", jo.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	exported := decode[store.ExportData](t, resp)
	assert.Len(t, exported.Users, 1)
	assert.Len(t, exported.Reports, 1)

	// Restoring into a fresh server reproduces the state, including the
	// ability to log in with the old credentials.
	other := newTestServer(t)
	boot := signup(t, other, "admin@example.com", "secret1", "Admin")

	resp = doJSON(t, http.MethodPost, other.URL+"/api/import", boot.Token, exported)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, other.URL+"/api/login", "", LoginRequest{
		Email: "jo@example.com", Password: "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)
	jo := signup(t, srv, "jo@example.com", "secret1", "Jo")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/logout", jo.Token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
