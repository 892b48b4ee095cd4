package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/erpimport/internal/config"
	"github.com/JonMunkholm/erpimport/internal/core"
	_ "github.com/JonMunkholm/erpimport/internal/core/kinds"
	"github.com/JonMunkholm/erpimport/internal/store/memory"
)

type stubResolver struct{}

func (stubResolver) ResolveCountry(context.Context, string) (string, int, error) {
	return "", 1, nil
}

type stubEmail struct{}

func (stubEmail) Validate(context.Context, string, bool) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{MaxUploadSize: 1 << 20},
		Import: config.ImportConfig{HomeCountry: "FR", CreateBank: true, Inventory: true},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, resolver core.CountryResolver) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New(&core.Reference{
		Countries:         []core.Country{{ID: 1, Code: "FR", Name: "France"}},
		EUCountryCodes:    []string{"FR"},
		Currencies:        map[string]int64{"EUR": 1},
		Categories:        map[string]int64{"All": 1},
		DefaultLocationID: 8,
	})
	ext := core.Externals{Email: stubEmail{}}
	if resolver != nil {
		ext.Resolver = resolver
	}
	svc := core.NewService(store, store, ext, core.ServiceConfig{HomeCountry: "FR", MaxConcurrent: 1, MaxWait: time.Second})
	return NewServer(svc, cfg), store
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleImport_JSON(t *testing.T) {
	s, store := newTestServer(t, testConfig(), stubResolver{})

	body := `{"rows":[{"name":"Acme","country_name":"France","zip":"7500"},{"name":"Bob","is_company":false}],"options":{"create_bank":false}}`
	req := httptest.NewRequest(http.MethodPost, "/api/imports/partners", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(s, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res core.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Rows)
	require.Len(t, res.Created, 2)
	assert.Equal(t, "1", res.Created[0].Line)
	assert.Len(t, store.Partners(), 2)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	// The batch stays available for the report pages.
	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/imports/"+res.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/imports/"+res.ID+"/report", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Zip code has 4 chars")
}

func TestHandleImport_Multipart(t *testing.T) {
	s, _ := newTestServer(t, testConfig(), stubResolver{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "clients.csv")
	require.NoError(t, err)
	fw.Write([]byte("name,country_name\nAcme,France\n"))
	mw.WriteField("redirect", "report")
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports/partners", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := serve(s, req)

	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/imports/"))
	assert.True(t, strings.HasSuffix(rec.Header().Get("Location"), "/report"))
}

func TestHandleImport_Errors(t *testing.T) {
	s, _ := newTestServer(t, testConfig(), stubResolver{})
	noResolver, _ := newTestServer(t, testConfig(), nil)

	tests := []struct {
		name     string
		server   *Server
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"unknown kind", s, "/api/imports/invoices", `{"rows":[{"name":"x"}]}`, http.StatusNotFound, "IMP001"},
		{"malformed body", s, "/api/imports/partners", `{"rows":`, http.StatusBadRequest, "REQ003"},
		{"no rows", s, "/api/imports/partners", `{"rows":[]}`, http.StatusBadRequest, "FILE004"},
		{"conflicting bank fields", s, "/api/imports/partners", `{"rows":[{"name":"x","iban":"FR1420041010050500013M02606","bank_ids":[1]}]}`, http.StatusBadRequest, "IMP003"},
		{"missing credential", noResolver, "/api/imports/partners", `{"rows":[{"name":"x"}]}`, http.StatusServiceUnavailable, "CFG001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := serve(tt.server, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantErr, resp.Code)
		})
	}
}

func TestHandleBatch_NotFound(t *testing.T) {
	s, _ := newTestServer(t, testConfig(), stubResolver{})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/imports/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/imports/nope/report", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "IMP005")
}

func TestHandleListKinds(t *testing.T) {
	s, _ := newTestServer(t, testConfig(), stubResolver{})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/kinds", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var kinds []core.KindInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kinds))
	require.Len(t, kinds, 2)
	assert.Equal(t, "partners", kinds[0].Key)
	assert.Equal(t, "products", kinds[1].Key)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), `action="/api/imports/products"`)
}

func TestServer_APIKeyAndRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"secret"}}
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, ImportLimit: 1}
	s, _ := newTestServer(t, cfg, stubResolver{})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/kinds", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/kinds", nil)
	req.Header.Set("X-API-Key", "secret")
	assert.Equal(t, http.StatusOK, serve(s, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/kinds", nil)
	req.Header.Set("X-API-Key", "secret")
	assert.Equal(t, http.StatusTooManyRequests, serve(s, req).Code)

	// Health is outside the API group.
	assert.Equal(t, http.StatusOK, serve(s, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}
