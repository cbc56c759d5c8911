package webserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("unit-test-secret")

func TestJWTRoundTrip(t *testing.T) {
	token, err := issueJWT(42, "vc@example.com", "vc", testSecret)
	require.NoError(t, err)

	userID, email, role, err := parseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), userID)
	assert.Equal(t, "vc@example.com", email)
	assert.Equal(t, "vc", role)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := issueJWT(42, "vc@example.com", "vc", testSecret)
	require.NoError(t, err)

	_, _, _, err = parseJWT(token, []byte("other-secret"))
	require.Error(t, err)
}

func TestJWTGarbage(t *testing.T) {
	_, _, _, err := parseJWT("not-a-token", testSecret)
	require.Error(t, err)
}

func authRequest(t *testing.T, header string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		c.Request.Header.Set("Authorization", header)
	}
	return w, c
}

func TestRequireAuth(t *testing.T) {
	token, err := issueJWT(7, "founder@example.com", "entrepreneur", testSecret)
	require.NoError(t, err)

	w, c := authRequest(t, "Bearer "+token)
	RequireAuth(testSecret)(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, c.IsAborted())
	assert.Equal(t, uint64(7), userID(c))
	assert.Equal(t, "entrepreneur", c.GetString("role"))
}

func TestRequireAuthMissingHeader(t *testing.T) {
	w, c := authRequest(t, "")
	RequireAuth(testSecret)(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestRequireAuthBadToken(t *testing.T) {
	w, c := authRequest(t, "Bearer bogus")
	RequireAuth(testSecret)(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}
