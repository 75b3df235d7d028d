package navigation

import (
	"context"
	"errors"
	"strings"

	"github.com/mamadbah2/farmsync/internal/domain/models"
	"github.com/mamadbah2/farmsync/pkg/clients/farmsync"
)

var (
	// ErrCredentialsRequired is returned by Login when the email or the
	// password is blank.
	ErrCredentialsRequired = errors.New("email and password are required")
	// ErrNoAuthenticator is returned by Login on a controller built without
	// WithAuthenticator.
	ErrNoAuthenticator = errors.New("login is not configured")
	// ErrLoginSuperseded is returned by a Login overtaken by another page
	// change before the backend answered.
	ErrLoginSuperseded = errors.New("login superseded")
	errEmptySession    = errors.New("login response carried no session")
)

// Authenticator signs a user in and binds the API to the issued token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (models.LoginResponse, error)
	Bind(token string) API
}

var _ API = (*farmsync.Client)(nil)

type clientAuthenticator struct {
	client *farmsync.Client
}

// ClientAuthenticator signs in through the REST client. Bound APIs share its
// connection pool.
func ClientAuthenticator(client *farmsync.Client) Authenticator {
	return clientAuthenticator{client: client}
}

func (a clientAuthenticator) Login(ctx context.Context, email, password string) (models.LoginResponse, error) {
	return a.client.Login(ctx, email, password)
}

func (a clientAuthenticator) Bind(token string) API {
	return a.client.WithToken(token)
}

// Login signs in from the Login page, binds the API to the new token and
// enters the Dashboard. The returned session is what the caller persists with
// SaveSession. A rejected sign-in stays on Login with the failure as the
// page's error state. Once signed in, a failing Dashboard fetch is left on the
// view and does not fail the login.
func (c *Controller) Login(ctx context.Context, email, password string) (Session, error) {
	if c.auth == nil {
		return Session{}, ErrNoAuthenticator
	}

	email = strings.TrimSpace(email)

	c.mu.Lock()
	tag := c.enter(PageLogin, "")
	if email == "" || password == "" {
		pe := validationError(ErrCredentialsRequired)
		c.view.Err = pe
		c.mu.Unlock()
		return Session{}, pe
	}
	c.view.Loading = true
	c.mu.Unlock()

	resp, err := c.auth.Login(ctx, email, password)
	session := NewSession(resp.UserID, resp.Token)
	if err == nil && !session.Authenticated() {
		err = errEmptySession
	}

	c.mu.Lock()
	if tag != c.current {
		c.mu.Unlock()
		return Session{}, ErrLoginSuperseded
	}
	c.view.Loading = false
	if err != nil {
		pe := classify(err)
		c.view.Err = pe
		c.mu.Unlock()
		return Session{}, pe
	}

	c.session = session
	c.api = c.auth.Bind(session.Token())
	c.knownWorkers = nil
	c.mu.Unlock()

	_ = c.Navigate(ctx, PageDashboard, "")
	return session, nil
}
