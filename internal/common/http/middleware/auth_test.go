package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"probrowse/pkg/testutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "browse-test-secret"

func signToken(t *testing.T, secret, issuer, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return token
}

func newAuthRouter(cfg AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", AuthMiddleware(cfg), func(c *gin.Context) {
		subject, _ := AuthSubject(c)
		c.JSON(http.StatusOK, gin.H{"subject": subject})
	})
	return router
}

func requestWithToken(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	cfg := AuthConfig{Secret: testSecret, Issuer: "probrowse"}
	router := newAuthRouter(cfg)

	token := signToken(t, testSecret, "probrowse", "tourist", time.Now().Add(time.Hour))
	recorder := requestWithToken(router, token)

	testutil.AssertEqual(t, recorder.Code, http.StatusOK)
	testutil.AssertTrue(t, recorder.Body.String() != "", "expected a body")
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	router := newAuthRouter(AuthConfig{Secret: testSecret})

	recorder := requestWithToken(router, "")
	testutil.AssertEqual(t, recorder.Code, http.StatusUnauthorized)
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	router := newAuthRouter(AuthConfig{Secret: testSecret})

	token := signToken(t, "another-secret", "", "tourist", time.Now().Add(time.Hour))
	recorder := requestWithToken(router, token)
	testutil.AssertEqual(t, recorder.Code, http.StatusUnauthorized)
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	router := newAuthRouter(AuthConfig{Secret: testSecret})

	token := signToken(t, testSecret, "", "tourist", time.Now().Add(-time.Hour))
	recorder := requestWithToken(router, token)
	testutil.AssertEqual(t, recorder.Code, http.StatusUnauthorized)
}

func TestAuthMiddlewareIssuerMismatch(t *testing.T) {
	router := newAuthRouter(AuthConfig{Secret: testSecret, Issuer: "probrowse"})

	token := signToken(t, testSecret, "someone-else", "tourist", time.Now().Add(time.Hour))
	recorder := requestWithToken(router, token)
	testutil.AssertEqual(t, recorder.Code, http.StatusUnauthorized)
}

func TestAuthSubjectWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := AuthSubject(c)
	testutil.AssertFalse(t, ok, "subject should be absent without the middleware")
}
