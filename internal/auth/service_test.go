package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, string, string) {
	t.Helper()
	adminRaw, adminHash, err := GenerateToken()
	require.NoError(t, err)
	viewerRaw, viewerHash, err := GenerateToken()
	require.NoError(t, err)

	s, err := NewService([]Token{
		{Name: "ops", Role: RoleAdmin, Hash: adminHash},
		{Name: "dashboard", Role: RoleViewer, Hash: viewerHash},
	})
	require.NoError(t, err)
	return s, adminRaw, viewerRaw
}

func TestGenerateToken(t *testing.T) {
	raw, hash, err := GenerateToken()
	require.NoError(t, err)
	assert.Len(t, raw, 72)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)))
}

func TestValidateToken(t *testing.T) {
	s, adminRaw, viewerRaw := newTestService(t)

	tok, err := s.ValidateToken(adminRaw)
	require.NoError(t, err)
	assert.Equal(t, "ops", tok.Name)

	tok, err = s.ValidateToken(viewerRaw)
	require.NoError(t, err)
	assert.Equal(t, RoleViewer, tok.Role)

	_, err = s.ValidateToken("nope")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.ValidateToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEnforce(t *testing.T) {
	s, _, _ := newTestService(t)

	tests := []struct {
		sub, obj, act string
		want          bool
	}{
		{"ops", ObjTariffs, ActWrite, true},
		{"ops", ObjSettings, ActWrite, true},
		{"dashboard", ObjTariffs, ActRead, true},
		{"dashboard", ObjJobs, ActRead, true},
		{"dashboard", ObjTariffs, ActWrite, false},
		{"stranger", ObjTariffs, ActRead, false},
	}
	for _, tt := range tests {
		got, err := s.Enforce(tt.sub, tt.obj, tt.act)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s %s", tt.sub, tt.obj, tt.act)
	}
}

func TestNewService_BadToken(t *testing.T) {
	_, err := NewService([]Token{{Name: "x", Role: "root", Hash: "h"}})
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = NewService([]Token{{Name: "x", Role: RoleAdmin}})
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	s, adminRaw, viewerRaw := newTestService(t)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := s.Middleware(s.RequirePermission(ObjTariffs, ActWrite, ok))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"unknown token", "Bearer abc", http.StatusUnauthorized},
		{"viewer", "Bearer " + viewerRaw, http.StatusForbidden},
		{"admin", "Bearer " + adminRaw, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
