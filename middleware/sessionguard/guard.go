// Package sessionguard gates routes on the session manager's state. It is
// evaluated per request, so a logout elsewhere in the app takes effect on
// the next navigation without any extra wiring.
package sessionguard

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-router"

	clubio "github.com/clubio/go-clubio"
)

// ErrSessionMissing is returned when no Manager was configured.
var ErrSessionMissing = errors.New("sessionguard: session manager is required")

// DefaultContextKey is where the resolved identity is stored for handlers.
const DefaultContextKey = "session_user"

// DefaultLoginRoute receives anonymous visitors.
const DefaultLoginRoute = "/login"

// DefaultLandingRoute receives authenticated visitors that fail the
// portal-type check.
const DefaultLandingRoute = "/dashboard"

type Config struct {
	// Session is the manager whose state gates the route. Required.
	Session *clubio.Manager

	// RequiredType restricts the route to one identity variant. Empty
	// admits both PERSON and CLUB identities.
	RequiredType clubio.UserType

	// Filter skips the guard for matching requests
	Filter func(router.Context) bool

	// LoginRoute overrides where anonymous visitors are redirected
	LoginRoute string

	// LandingRoute overrides where wrong-portal visitors are redirected
	LandingRoute string

	// ContextKey overrides where the identity is stored in request locals
	ContextKey string

	// LoadingHandler renders the neutral "still resolving" response. The
	// default answers 503 with a Retry-After hint and never navigates.
	LoadingHandler router.HandlerFunc

	// ErrorHandler receives configuration errors
	ErrorHandler router.ErrorHandler

	Logger clubio.Logger
}

// New returns a middleware that enforces the configured session gate.
func New(config ...Config) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		cfg := getDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			if cfg.Session == nil {
				return cfg.ErrorHandler(ctx, ErrSessionMissing)
			}

			if cfg.Session.IsLoading() {
				return cfg.LoadingHandler(ctx)
			}

			user := cfg.Session.User()
			if user == nil {
				cfg.Logger.Info("anonymous visitor, redirecting", "path", ctx.Path())
				return redirect(ctx, cfg.LoginRoute)
			}

			if cfg.RequiredType != "" && user.UserType != cfg.RequiredType {
				cfg.Logger.Info(
					"portal mismatch, redirecting",
					"required", cfg.RequiredType,
					"actual", user.UserType,
				)
				return redirect(ctx, cfg.LandingRoute)
			}

			ctx.Locals(cfg.ContextKey, user)
			return next(ctx)
		}
	}
}

// UserFromContext retrieves the identity stored by the guard.
func UserFromContext(ctx router.Context, key ...string) (*clubio.User, bool) {
	k := DefaultContextKey
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}

	raw := ctx.Locals(k)
	if raw == nil {
		return nil, false
	}

	user, ok := raw.(*clubio.User)
	return user, ok
}

func getDefaultConfig(config ...Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.LoginRoute == "" {
		cfg.LoginRoute = DefaultLoginRoute
	}

	if cfg.LandingRoute == "" {
		cfg.LandingRoute = DefaultLandingRoute
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.LoadingHandler == nil {
		cfg.LoadingHandler = defaultLoadingHandler
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx router.Context, err error) error {
			return err
		}
	}

	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	return cfg
}

func defaultLoadingHandler(ctx router.Context) error {
	ctx.SetHeader("Retry-After", "1")
	return ctx.Status(http.StatusServiceUnavailable).SendString("session resolving")
}

func redirect(ctx router.Context, target string) error {
	status := http.StatusSeeOther
	if ctx.Method() == http.MethodGet {
		status = http.StatusFound
	}
	return ctx.Redirect(target, status)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
