package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/opencommons/gatehouse/internal/domain/auth"
	mockauth "github.com/opencommons/gatehouse/internal/mocks/auth"
	"github.com/opencommons/gatehouse/internal/service"
)

func newRouterFixture(t *testing.T) (http.Handler, RouterServices) {
	t.Helper()
	svc, err := service.NewAuthService(service.AuthServiceOptions{
		Provider: mockauth.NewMockIdentityProvider(),
		Sessions: mockauth.NewMemorySessionStore(),
	})
	require.NoError(t, err)
	services := RouterServices{Auth: svc, Logger: testLogger()}
	return NewRouter(services), services
}

func TestRouter_Healthz(t *testing.T) {
	router, _ := newRouterFixture(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRouter_AuthEndpointMounted(t *testing.T) {
	router, _ := newRouterFixture(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No active session found.\n", rec.Body.String())
}

func TestProtect_RedirectsAnonymous(t *testing.T) {
	_, services := newRouterFixture(t)

	protected := Protect(services, domainauth.Expression{
		AllOf: []*domainauth.Requirement{domainauth.Member},
	}, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/members", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/auth?login=")
}
