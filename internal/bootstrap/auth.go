package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/opencommons/gatehouse/config"
	"github.com/opencommons/gatehouse/internal/adapters/cookie"
	"github.com/opencommons/gatehouse/internal/adapters/devauth"
	ldapadapter "github.com/opencommons/gatehouse/internal/adapters/ldap"
	"github.com/opencommons/gatehouse/internal/adapters/oauth"
	redisadapter "github.com/opencommons/gatehouse/internal/adapters/redis"
	"github.com/opencommons/gatehouse/internal/adapters/roleaccounts"
	"github.com/opencommons/gatehouse/internal/ports"
	"github.com/opencommons/gatehouse/internal/service"
)

// AuthConfig contains configuration for the auth service.
type AuthConfig struct {
	Config config.AppConfig
	Secret []byte
	Logger *slog.Logger
}

// BuildAuthService wires the identity provider, session store, directory and
// bearer-token verifier selected by configuration into one AuthService.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sessions, err := buildSessionStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("build session store: %w", err)
	}

	provider, err := buildProvider(cfg.Config.Auth)
	if err != nil {
		return nil, fmt.Errorf("build identity provider: %w", err)
	}

	var directory ports.Directory
	if cfg.Config.LDAP.URI != "" {
		dir := ldapadapter.NewDirectory(cfg.Config.LDAP)
		directory = ldapadapter.NewAffiliationCache(dir, cfg.Config.LDAP.CacheTTL)
	} else {
		logger.Warn("LDAP URI not configured, basic auth disabled")
	}

	var tokens ports.TokenVerifier
	if path := cfg.Config.Auth.RoleAccountsFile; path != "" {
		verifier, err := roleaccounts.Load(path, cfg.Config.Auth.DefaultDomain)
		if err != nil {
			return nil, fmt.Errorf("load role accounts: %w", err)
		}
		tokens = verifier
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider:        provider,
		Sessions:        sessions,
		Directory:       directory,
		Tokens:          tokens,
		EndpointPath:    cfg.Config.Auth.OAuth.EndpointPath,
		WorkflowTimeout: cfg.Config.Auth.OAuth.WorkflowTimeout,
		DefaultDomain:   cfg.Config.Auth.DefaultDomain,
		Logger:          logger,
	})
}

func buildSessionStore(cfg AuthConfig) (ports.SessionStore, error) {
	switch cfg.Config.Session.Backend {
	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Config.Redis.Addr,
			Password: cfg.Config.Redis.Password,
			DB:       cfg.Config.Redis.DB,
		})
		return redisadapter.NewSessionStore(redisadapter.Options{
			Client:       client,
			AppID:        cfg.Config.AppID,
			IdleTTL:      cfg.Config.Session.IdleTTL,
			CookieDomain: cfg.Config.Session.CookieDomain,
		})
	case config.SessionBackendCookie:
		return cookie.NewSessionStore(cookie.Options{
			AppID:        cfg.Config.AppID,
			Secret:       cfg.Secret,
			IdleTTL:      cfg.Config.Session.IdleTTL,
			CookieDomain: cfg.Config.Session.CookieDomain,
		})
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Config.Session.Backend)
	}
}

func buildProvider(cfg config.AuthConfig) (ports.IdentityProvider, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		return devauth.NewProvider(cfg.DevAuth, cfg.DefaultDomain)
	case config.AuthModeOAuth:
		return oauth.NewProvider(cfg.OAuth, cfg.DefaultDomain)
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
