package accessgate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

var (
	// ErrInvalidCredentials is returned for unknown emails, wrong passwords and inactive users alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInactiveUser is returned when a valid token belongs to a user that is gone or deactivated.
	ErrInactiveUser = errors.New("user is not active")

	ErrNilClock = errors.New("clock must not be nil")
)

// unknownUserPassword is hashed once per Gate. Logins for unknown emails are compared against
// that hash, so they take as long as logins with a wrong password.
const unknownUserPassword = "unknown-user"

// Session is the outcome of a successful login.
type Session struct {
	Caller    core.Caller
	Name      string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Gate authenticates users against the record store and authorizes bearer tokens.
type Gate struct {
	store       recordstore.Store
	secret      []byte
	ttl         time.Duration
	clock       func() time.Time
	tokens      TokenIssuer
	unknownHash []byte
}

// Option defines a functional option for configuring a Gate.
type Option func(*Gate) error

// WithTokenTTL sets how long issued tokens stay valid. The default is DefaultTokenTTL.
func WithTokenTTL(ttl time.Duration) Option {
	return func(g *Gate) error {
		if ttl <= 0 {
			return ErrInvalidTokenTTL
		}

		g.ttl = ttl

		return nil
	}
}

func WithClock(clock func() time.Time) Option {
	return func(g *Gate) error {
		if clock == nil {
			return ErrNilClock
		}

		g.clock = clock

		return nil
	}
}

// NewGate creates a Gate that signs tokens with secret.
func NewGate(store recordstore.Store, secret []byte, options ...Option) (*Gate, error) {
	if store == nil {
		return nil, shell.ErrNilRecordStore
	}

	g := &Gate{
		store:  store,
		secret: secret,
		ttl:    DefaultTokenTTL,
		clock:  time.Now,
	}

	for _, option := range options {
		if err := option(g); err != nil {
			return nil, err
		}
	}

	tokens, err := NewTokenIssuer(g.secret, g.ttl)
	if err != nil {
		return nil, err
	}

	unknownHash, err := HashPassword(unknownUserPassword)
	if err != nil {
		return nil, err
	}

	g.tokens = tokens
	g.unknownHash = unknownHash

	return g, nil
}

// Authenticate checks email and password and issues a token for the user.
func (g *Gate) Authenticate(ctx context.Context, email, password string) (Session, error) {
	user, err := g.loadUser(ctx, func(tx recordstore.Reader) (recordstore.User, error) {
		return tx.UserByEmail(ctx, strings.TrimSpace(email))
	})
	if err != nil {
		return Session{}, err
	}

	if user == nil || !user.Active {
		_ = ComparePassword(g.unknownHash, password)

		return Session{}, ErrInvalidCredentials
	}

	if err = ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			return Session{}, ErrInvalidCredentials
		}

		return Session{}, err
	}

	caller := core.Caller{ID: user.ID, Role: user.Role}

	token, expiresAt, err := g.tokens.Issue(caller, g.clock())
	if err != nil {
		return Session{}, err
	}

	return Session{
		Caller:    caller,
		Name:      user.Name,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Authorize verifies token and returns the caller with the role the user has now.
func (g *Gate) Authorize(ctx context.Context, token string) (core.Caller, error) {
	claimed, err := g.tokens.Verify(token, g.clock())
	if err != nil {
		return core.Caller{}, err
	}

	user, err := g.loadUser(ctx, func(tx recordstore.Reader) (recordstore.User, error) {
		return tx.UserByID(ctx, claimed.ID)
	})
	if err != nil {
		return core.Caller{}, err
	}

	if user == nil || !user.Active {
		return core.Caller{}, ErrInactiveUser
	}

	return core.Caller{ID: user.ID, Role: user.Role}, nil
}

// IssueToken returns a token for an existing user without checking a password.
// The seeding command uses it to print a token for the admin it created.
func (g *Gate) IssueToken(userID uuid.UUID, role recordstore.Role) (string, time.Time, error) {
	return g.tokens.Issue(core.Caller{ID: userID, Role: role}, g.clock())
}

func (g *Gate) loadUser(
	ctx context.Context,
	lookup func(tx recordstore.Reader) (recordstore.User, error),
) (*recordstore.User, error) {
	var user *recordstore.User

	err := shell.ReadInTx(ctx, g.store, func(tx recordstore.Reader) error {
		var lookupErr error
		user, lookupErr = shell.OptionalRecord(lookup(tx))

		return lookupErr
	})

	return user, err
}
