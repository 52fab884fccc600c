package bootstrap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencommons/gatehouse/config"
)

func devConfig() config.AppConfig {
	return config.AppConfig{
		AppID: "testapp",
		Auth: config.AuthConfig{
			Mode:          config.AuthModeMock,
			DevAuth:       config.DevAuthConfig{UID: "dev-user"},
			DefaultDomain: "example.org",
			OAuth: config.OAuthConfig{
				EndpointPath:    "/auth",
				WorkflowTimeout: 900 * time.Second,
			},
		},
		Session: config.SessionConfig{
			Backend: config.SessionBackendCookie,
			IdleTTL: time.Hour,
		},
	}
}

func TestBuildAuthService_MockMode(t *testing.T) {
	svc, err := BuildAuthService(AuthConfig{
		Config: devConfig(),
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Logger: discardLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "/auth", svc.EndpointPath())
	assert.Equal(t, 900*time.Second, svc.WorkflowTimeout())
}

func TestBuildAuthService_UnknownBackend(t *testing.T) {
	cfg := devConfig()
	cfg.Session.Backend = "carrier-pigeon"

	_, err := BuildAuthService(AuthConfig{
		Config: cfg,
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Logger: discardLogger(),
	})
	assert.Error(t, err)
}

func TestBuildAuthService_UnknownAuthMode(t *testing.T) {
	cfg := devConfig()
	cfg.Auth.Mode = "saml"

	_, err := BuildAuthService(AuthConfig{
		Config: cfg,
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Logger: discardLogger(),
	})
	assert.Error(t, err)
}

func TestBuildAuthService_CookieBackendNeedsSecret(t *testing.T) {
	_, err := BuildAuthService(AuthConfig{
		Config: devConfig(),
		Logger: discardLogger(),
	})
	assert.Error(t, err)
}

func TestBuildAuthService_MissingRoleAccountsFile(t *testing.T) {
	cfg := devConfig()
	cfg.Auth.RoleAccountsFile = "/nonexistent/roles.yaml"

	_, err := BuildAuthService(AuthConfig{
		Config: cfg,
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Logger: discardLogger(),
	})
	assert.Error(t, err)
}
