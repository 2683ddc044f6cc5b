package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview-backend/internal/shared"
	"bookreview-backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProfiles map[string]shared.Principal

func (s stubProfiles) LookupPrincipal(ctx context.Context, uid string) (shared.Principal, error) {
	if uid == "broken" {
		return shared.Principal{}, errors.New("db down")
	}
	p, ok := s[uid]
	if !ok {
		return shared.Principal{}, shared.ErrPrincipalNotFound
	}
	return p, nil
}

var profiles = stubProfiles{
	"u1": {UserID: "u1", Username: "alice", Role: shared.RoleReader},
	"a1": {UserID: "a1", Username: "root", Role: shared.RoleAdmin},
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/", append(handlers, func(c *gin.Context) {
		p, _ := GetPrincipal(c)
		c.String(http.StatusOK, p.UserID)
	})...)
	return r
}

func doGet(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	manager := jwt.NewManager("test-secret", "")
	other := jwt.NewManager("other-secret", "")

	mint := func(m *jwt.Manager, uid string, ttl time.Duration) string {
		token, err := m.IssueToken(uid, uid+"@example.com", true, ttl)
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantBody   string
	}{
		{"valid token with profile", mint(manager, "u1", time.Hour), http.StatusOK, "u1"},
		{"missing token", "", http.StatusUnauthorized, ""},
		{"wrong secret", mint(other, "u1", time.Hour), http.StatusUnauthorized, ""},
		{"expired", mint(manager, "u1", -time.Minute), http.StatusUnauthorized, "Token expired"},
		{"no profile", mint(manager, "ghost", time.Hour), http.StatusUnauthorized, "User profile not found"},
		{"lookup failure", mint(manager, "broken", time.Hour), http.StatusInternalServerError, "Internal server error"},
	}

	r := newRouter(Authenticate(manager, profiles))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, tt.token)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	r := newRouter(Authenticate(jwt.NewManager("test-secret", ""), profiles))

	for _, header := range []string{"Token abc", "Bearer", "Bearer   ", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestAuthenticateToken_DoesNotNeedProfile(t *testing.T) {
	manager := jwt.NewManager("test-secret", "")
	token, err := manager.IssueToken("ghost", "ghost@example.com", false, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", AuthenticateToken(manager), func(c *gin.Context) {
		claims, ok := GetClaims(c)
		require.True(t, ok)
		_, hasPrincipal := GetPrincipal(c)
		assert.False(t, hasPrincipal)
		c.String(http.StatusOK, claims.UID)
	})

	w := doGet(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ghost", w.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	manager := jwt.NewManager("test-secret", "")
	r := newRouter(Authenticate(manager, profiles), RequireAdmin())

	reader, err := manager.IssueToken("u1", "u1@example.com", true, time.Hour)
	require.NoError(t, err)
	adminToken, err := manager.IssueToken("a1", "a1@example.com", true, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, doGet(r, reader).Code)
	assert.Equal(t, http.StatusOK, doGet(r, adminToken).Code)
}

func TestRequireAdmin_WithoutAuthenticate(t *testing.T) {
	r := newRouter(RequireAdmin())
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
}

func TestRequestID(t *testing.T) {
	r := newRouter()

	w := doGet(r, "")
	generated := w.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger(), Recovery())
	r.GET("/", func(c *gin.Context) {
		panic("boom")
	})

	w := doGet(r, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.NotContains(t, w.Body.String(), "boom")
}
