package app

import (
	"context"
	"fmt"
	"time"

	authHTTP "github.com/allisson/sessions/internal/auth/http"
	authMySQL "github.com/allisson/sessions/internal/auth/repository/mysql"
	authPostgreSQL "github.com/allisson/sessions/internal/auth/repository/postgresql"
	authService "github.com/allisson/sessions/internal/auth/service"
	authUseCase "github.com/allisson/sessions/internal/auth/usecase"
)

// secretResolveTimeout bounds the KMS round trip when decrypting the signing secret.
const secretResolveTimeout = 30 * time.Second

// SigningSecret returns the raw token signing secret, decrypting it with the
// configured KMS key when AUTH_SIGNING_SECRET_KMS_KEY_URI is set.
func (c *Container) SigningSecret() ([]byte, error) {
	var err error
	c.signingSecretInit.Do(func() {
		c.signingSecret, err = c.initSigningSecret()
		if err != nil {
			c.initErrors["signingSecret"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["signingSecret"]; exists {
		return nil, storedErr
	}
	return c.signingSecret, nil
}

// TokenCodec returns the JWT codec used to mint and verify session tokens.
func (c *Container) TokenCodec() (authService.TokenCodec, error) {
	var err error
	c.tokenCodecInit.Do(func() {
		c.tokenCodec, err = c.initTokenCodec()
		if err != nil {
			c.initErrors["tokenCodec"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenCodec"]; exists {
		return nil, storedErr
	}
	return c.tokenCodec, nil
}

// TokenService returns the token hashing service.
func (c *Container) TokenService() authService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = authService.NewTokenService()
	})
	return c.tokenService
}

// EventSigner returns the session event signer.
func (c *Container) EventSigner() (authService.EventSigner, error) {
	var err error
	c.eventSignerInit.Do(func() {
		c.eventSigner, err = c.initEventSigner()
		if err != nil {
			c.initErrors["eventSigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventSigner"]; exists {
		return nil, storedErr
	}
	return c.eventSigner, nil
}

// TokenRepository returns the token allow-list repository based on database driver.
func (c *Container) TokenRepository() (authUseCase.TokenRepository, error) {
	var err error
	c.tokenRepoInit.Do(func() {
		c.tokenRepo, err = c.initTokenRepository()
		if err != nil {
			c.initErrors["tokenRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenRepo"]; exists {
		return nil, storedErr
	}
	return c.tokenRepo, nil
}

// SessionEventRepository returns the session event repository based on database driver.
func (c *Container) SessionEventRepository() (authUseCase.SessionEventRepository, error) {
	var err error
	c.sessionEventRepoInit.Do(func() {
		c.sessionEventRepo, err = c.initSessionEventRepository()
		if err != nil {
			c.initErrors["sessionEventRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionEventRepo"]; exists {
		return nil, storedErr
	}
	return c.sessionEventRepo, nil
}

// SessionEventUseCase returns the session event use case.
func (c *Container) SessionEventUseCase() (authUseCase.SessionEventUseCase, error) {
	var err error
	c.sessionEventUseCaseInit.Do(func() {
		c.sessionEventUseCase, err = c.initSessionEventUseCase()
		if err != nil {
			c.initErrors["sessionEventUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionEventUseCase"]; exists {
		return nil, storedErr
	}
	return c.sessionEventUseCase, nil
}

// RevocationUseCase returns the revocation use case.
func (c *Container) RevocationUseCase() (authUseCase.RevocationUseCase, error) {
	var err error
	c.revocationUseCaseInit.Do(func() {
		c.revocationUseCase, err = c.initRevocationUseCase()
		if err != nil {
			c.initErrors["revocationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["revocationUseCase"]; exists {
		return nil, storedErr
	}
	return c.revocationUseCase, nil
}

// SessionUseCase returns the session use case (login, refresh, authenticate).
func (c *Container) SessionUseCase() (authUseCase.SessionUseCase, error) {
	var err error
	c.sessionUseCaseInit.Do(func() {
		c.sessionUseCase, err = c.initSessionUseCase()
		if err != nil {
			c.initErrors["sessionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionUseCase"]; exists {
		return nil, storedErr
	}
	return c.sessionUseCase, nil
}

// CookieTransport returns the session cookie transport.
func (c *Container) CookieTransport() *authHTTP.CookieTransport {
	c.cookieTransportInit.Do(func() {
		c.cookieTransport = authHTTP.NewCookieTransport(c.config.AuthCookieDomain, c.config.AuthCookieSecure)
	})
	return c.cookieTransport
}

// SessionHandler returns the HTTP handler for the /auth endpoints.
func (c *Container) SessionHandler() (*authHTTP.SessionHandler, error) {
	var err error
	c.sessionHandlerInit.Do(func() {
		c.sessionHandler, err = c.initSessionHandler()
		if err != nil {
			c.initErrors["sessionHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionHandler"]; exists {
		return nil, storedErr
	}
	return c.sessionHandler, nil
}

func (c *Container) initSigningSecret() ([]byte, error) {
	ctx, cancel := context.WithTimeout(c.ctx, secretResolveTimeout)
	defer cancel()

	resolver := authService.NewSecretResolver(c.Logger())
	secret, err := resolver.Resolve(ctx, c.config.AuthSigningSecret, c.config.AuthSigningSecretKMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve signing secret: %w", err)
	}
	return secret, nil
}

func (c *Container) initTokenCodec() (authService.TokenCodec, error) {
	secret, err := c.SigningSecret()
	if err != nil {
		return nil, err
	}

	codec, err := authService.NewTokenCodec(secret, c.config.AuthTokenIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}
	return codec, nil
}

func (c *Container) initEventSigner() (authService.EventSigner, error) {
	secret, err := c.SigningSecret()
	if err != nil {
		return nil, err
	}

	signer, err := authService.NewEventSigner(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to create event signer: %w", err)
	}
	return signer, nil
}

// initTokenRepository creates the token repository based on the database driver.
func (c *Container) initTokenRepository() (authUseCase.TokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return authPostgreSQL.NewPostgreSQLTokenRepository(db), nil
	case "mysql":
		return authMySQL.NewMySQLTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSessionEventRepository creates the session event repository based on the database driver.
func (c *Container) initSessionEventRepository() (authUseCase.SessionEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for session event repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return authPostgreSQL.NewPostgreSQLSessionEventRepository(db), nil
	case "mysql":
		return authMySQL.NewMySQLSessionEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initSessionEventUseCase() (authUseCase.SessionEventUseCase, error) {
	eventRepo, err := c.SessionEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get session event repository for session event use case: %w", err)
	}

	signer, err := c.EventSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get event signer for session event use case: %w", err)
	}

	return authUseCase.NewSessionEventUseCase(eventRepo, signer), nil
}

// initRevocationUseCase creates the revocation use case with all its dependencies.
func (c *Container) initRevocationUseCase() (authUseCase.RevocationUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for revocation use case: %w", err)
	}

	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for revocation use case: %w", err)
	}

	events, err := c.SessionEventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session event use case for revocation use case: %w", err)
	}

	baseUseCase := authUseCase.NewRevocationUseCase(txManager, tokenRepo, events, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for revocation use case: %w", err)
		}
		return authUseCase.NewRevocationUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initSessionUseCase creates the session use case with all its dependencies.
func (c *Container) initSessionUseCase() (authUseCase.SessionUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for session use case: %w", err)
	}

	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for session use case: %w", err)
	}

	userUseCase, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for session use case: %w", err)
	}

	codec, err := c.TokenCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get token codec for session use case: %w", err)
	}

	events, err := c.SessionEventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session event use case for session use case: %w", err)
	}

	baseUseCase := authUseCase.NewSessionUseCase(
		c.config,
		txManager,
		tokenRepo,
		userUseCase,
		codec,
		c.TokenService(),
		events,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for session use case: %w", err)
		}
		return authUseCase.NewSessionUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initSessionHandler() (*authHTTP.SessionHandler, error) {
	sessionUseCase, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for session handler: %w", err)
	}

	revocationUseCase, err := c.RevocationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get revocation use case for session handler: %w", err)
	}

	events, err := c.SessionEventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session event use case for session handler: %w", err)
	}

	return authHTTP.NewSessionHandler(
		sessionUseCase,
		revocationUseCase,
		events,
		c.CookieTransport(),
		c.Logger(),
	), nil
}
