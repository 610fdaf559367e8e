package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/noovel/internal/model"
)

const testSecret = "test-secret"

func testContext(t *testing.T, header http.Header) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header = header
	c.Request = req
	return c
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "user@example.com", "小明", model.RoleAuthor, testSecret, time.Hour)
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	c := testContext(t, header)

	claims, err := extractClaims(c, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, model.RoleAuthor, claims.Role)
}

func TestExtractClaimsRejectsBadSecret(t *testing.T) {
	token, err := GenerateToken(1, "user@example.com", "小明", model.RoleReader, testSecret, time.Hour)
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	c := testContext(t, header)

	_, err = extractClaims(c, "another-secret")
	assert.Error(t, err)
}

func TestExtractClaimsMissingToken(t *testing.T) {
	c := testContext(t, http.Header{})
	_, err := extractClaims(c, testSecret)
	assert.Error(t, err)
}

func TestExtractClaimsExpiredToken(t *testing.T) {
	token, err := GenerateToken(1, "user@example.com", "小明", model.RoleReader, testSecret, -time.Minute)
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	c := testContext(t, header)

	_, err = extractClaims(c, testSecret)
	assert.Error(t, err)
}

func TestShouldRefresh(t *testing.T) {
	fresh := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	assert.False(t, shouldRefresh(fresh))

	// 有效期过半后触发续发
	aged := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-40 * time.Minute)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(20 * time.Minute)),
	}}
	assert.True(t, shouldRefresh(aged))
}

func TestGetSessionUser(t *testing.T) {
	c := testContext(t, http.Header{})
	assert.Nil(t, GetSessionUser(c))

	c.Set("user_id", 7)
	c.Set("email", "user@example.com")
	c.Set("username", "小明")
	c.Set("role", model.RoleAdmin)

	su := GetSessionUser(c)
	require.NotNil(t, su)
	assert.Equal(t, 7, su.ID)
	assert.Equal(t, model.RoleAdmin, su.Role)
}
