package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gym-booking/internal/config"
	"github.com/iliyamo/gym-booking/internal/model"
	"github.com/iliyamo/gym-booking/internal/repository"
	"github.com/iliyamo/gym-booking/internal/utils"
)

const testSecret = "test-secret"

type fakeSessions map[string]model.Login

func (f fakeSessions) GetByAccessKey(_ context.Context, key string) (model.Login, error) {
	l, ok := f[key]
	if !ok {
		return model.Login{}, repository.ErrNotFound
	}
	return l, nil
}

func quietLog() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func serve(t *testing.T, mw echo.MiddlewareFunc, token string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	require.NoError(t, h(c))
	return rec, c
}

func TestSessionAuthAcceptsLiveSession(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 11, "Trainer", "key-1", 5)
	require.NoError(t, err)
	store := fakeSessions{"key-1": {ID: 11, Role: model.RoleTrainer}}

	rec, c := serve(t, SessionAuth(testSecret, store, quietLog()), tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	id, ok := LoginID(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(11), id)
	assert.Equal(t, model.RoleTrainer, Role(c))
	assert.Equal(t, "key-1", AccessKey(c))
}

func TestSessionAuthRejectsEndedSession(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 11, "Trainer", "key-old", 5)
	require.NoError(t, err)
	store := fakeSessions{"key-new": {ID: 11, Role: model.RoleTrainer}}

	rec, _ := serve(t, SessionAuth(testSecret, store, quietLog()), tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Session has ended")
}

func TestSessionAuthRejectsMissingOrForgedToken(t *testing.T) {
	rec, _ := serve(t, SessionAuth(testSecret, fakeSessions{}, quietLog()), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged, err := utils.NewAccessToken("other-secret", 11, "Admin", "key-1", 5)
	require.NoError(t, err)
	rec, _ = serve(t, SessionAuth(testSecret, fakeSessions{"key-1": {ID: 11, Role: model.RoleAdmin}}, quietLog()), forged.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthRejectsRoleMismatch(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 11, "Admin", "key-1", 5)
	require.NoError(t, err)
	store := fakeSessions{"key-1": {ID: 11, Role: model.RoleMember}}

	rec, _ := serve(t, SessionAuth(testSecret, store, quietLog()), tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthRejectsUnknownRole(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 11, "Owner", "key-1", 5)
	require.NoError(t, err)
	store := fakeSessions{"key-1": {ID: 11, Role: "Owner"}}

	rec, c := serve(t, SessionAuth(testSecret, store, quietLog()), tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired token")
	_, ok := LoginID(c)
	assert.False(t, ok)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	run := func(role model.Role) int {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
		if role != "" {
			SetIdentity(c, 1, role, "k")
		}
		h := RequireRole(model.RoleAdmin, model.RoleTrainer)(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
		require.NoError(t, h(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, run(model.RoleAdmin))
	assert.Equal(t, http.StatusNoContent, run(model.RoleTrainer))
	assert.Equal(t, http.StatusForbidden, run(model.RoleMember))
	assert.Equal(t, http.StatusForbidden, run(""))
}

func TestBuildRateKeyStrategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/users/login")

	cfg := config.RateLimitConfig{Prefix: "gym:rl", KeyStrategy: "ip_route"}
	assert.Equal(t, "gym:rl:ip:10.0.0.9:route:POST /api/users/login", buildRateKey(cfg, c))

	cfg.KeyStrategy = "user"
	assert.Equal(t, "gym:rl:user:anon", buildRateKey(cfg, c))
	SetIdentity(c, 42, model.RoleMember, "k")
	assert.Equal(t, "gym:rl:user:42", buildRateKey(cfg, c))
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"status":"success"}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `{"status":"success"}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 0, 0})
	assert.False(t, ok)
}

func TestCacheKeyIncludesPathParams(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "gym:cache", KeyStrategy: "route_query"}
	key := func(id string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/blogs/"+id, nil), httptest.NewRecorder())
		c.SetPath("/api/blogs/:id")
		c.SetParamNames("id")
		c.SetParamValues(id)
		return cacheKeyFrom(cfg, "blogs", c)
	}
	assert.NotEqual(t, key("1"), key("2"))
	assert.Contains(t, key("1"), "gym:cache:blogs:")
}

func TestDisabledCacheAndLimiterPassThrough(t *testing.T) {
	rec, _ := serve(t, NewRedisCache(config.CacheConfig{Enabled: false}, nil, "blogs"), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))

	rec, _ = serve(t, NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLoggerWritesOneLine(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	rec, _ := serve(t, RequestLogger(log), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), `"status":200`)
	assert.Contains(t, buf.String(), `"path":"/api/bookings"`)
}
