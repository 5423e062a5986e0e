// Package usecase implements the passcode lifecycle and federated login
// reconciliation. It owns every business rule; stores, limiters, notifiers,
// and provider adapters are injected behind the contracts declared here.
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/plungelab/authgate/internal/auth/entity"
	"github.com/plungelab/authgate/internal/pkg/clock"
	"github.com/plungelab/authgate/internal/pkg/config"
	"github.com/plungelab/authgate/internal/pkg/goerror"
	"github.com/plungelab/authgate/internal/pkg/hash"
	"github.com/plungelab/authgate/internal/pkg/instrument"
	"github.com/plungelab/authgate/internal/pkg/jwt"
	"github.com/plungelab/authgate/internal/pkg/otp"
	"github.com/plungelab/authgate/internal/pkg/ratelimit"
	"github.com/plungelab/authgate/internal/pkg/uid"
	"github.com/plungelab/authgate/internal/pkg/validator"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/trace"
)

type repoStore interface {
	GetByEmail(ctx context.Context, email string) (*entity.Identity, error)
	GetByID(ctx context.Context, id int64) (*entity.Identity, error)
	GetByProvider(ctx context.Context, provider entity.Provider, providerID string) (*entity.Identity, error)

	// Create persists a new record, failing with goerror.ErrConflict when
	// the key already exists.
	Create(ctx context.Context, in entity.Identity) error

	// CompareAndSwap persists in only when the stored version still equals
	// in.Version, bumping the version on success. It fails with
	// goerror.ErrConflict on a version mismatch and goerror.ErrNotFound
	// when the record no longer exists.
	CompareAndSwap(ctx context.Context, in entity.Identity) error
}

type repoNotifier interface {
	// SendPasscode hands the plaintext code to the delivery channel. The
	// code never travels any other way.
	SendPasscode(ctx context.Context, email, code string, ttl time.Duration) error
}

type identityProvider interface {
	VerifyToken(ctx context.Context, provider entity.Provider, token string) (entity.Claims, error)
}

// Usecase orchestrates issue, verify, resend, and federated reconciliation.
type Usecase struct {
	store     repoStore
	limiter   ratelimit.Limiter
	notifier  repoNotifier
	idp       identityProvider
	validator validator.Validator
	cfg       config.Config
	bcrypt    hash.Hash
	generator otp.Generator
	uid       uid.NumberID
	clock     clock.Clocker
	jwt       jwt.JWT
	ins       instrument.Instrumentation
}

// Dependency lists everything a Usecase needs.
type Dependency struct {
	Store      repoStore
	Limiter    ratelimit.Limiter
	Notifier   repoNotifier
	IDP        identityProvider
	Validator  validator.Validator
	Config     config.Config
	Bcrypt     hash.Hash
	Generator  otp.Generator
	UID        uid.NumberID
	Clock      clock.Clocker
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		store:     dep.Store,
		limiter:   dep.Limiter,
		notifier:  dep.Notifier,
		idp:       dep.IDP,
		validator: dep.Validator,
		cfg:       dep.Config,
		bcrypt:    dep.Bcrypt,
		generator: dep.Generator,
		uid:       dep.UID,
		clock:     dep.Clock,
		jwt:       dep.JWT,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

// policy holds the tunable lifecycle constants. Every value is read from
// configuration with a fallback, since thresholds are deployment policy
// rather than code.
type policy struct {
	codeTTL       time.Duration
	maxAttempts   int
	issueCeiling  int
	issueWindow   time.Duration
	resendGap     time.Duration
	verifyCeiling int
	verifyWindow  time.Duration
	casRetries    uint64
}

func (s *Usecase) policy() policy {
	p := policy{
		codeTTL:       s.cfg.GetMinute("modules.auth.passcode_ttl_minutes"),
		maxAttempts:   s.cfg.GetInt("modules.auth.max_verify_attempts"),
		issueCeiling:  s.cfg.GetInt("modules.auth.issue_ceiling"),
		issueWindow:   s.cfg.GetMinute("modules.auth.issue_window_minutes"),
		resendGap:     s.cfg.GetSecond("modules.auth.resend_gap_seconds"),
		verifyCeiling: s.cfg.GetInt("modules.auth.verify_ceiling"),
		verifyWindow:  s.cfg.GetMinute("modules.auth.verify_window_minutes"),
		casRetries:    uint64(s.cfg.GetInt("modules.auth.cas_max_retries")),
	}

	if p.codeTTL <= 0 {
		p.codeTTL = 10 * time.Minute
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = 3
	}
	if p.issueCeiling <= 0 {
		p.issueCeiling = 3
	}
	if p.issueWindow <= 0 {
		p.issueWindow = 5 * time.Minute
	}
	if p.resendGap <= 0 {
		p.resendGap = 60 * time.Second
	}
	if p.verifyCeiling <= 0 {
		p.verifyCeiling = 10
	}
	if p.verifyWindow <= 0 {
		p.verifyWindow = 5 * time.Minute
	}
	if p.casRetries == 0 {
		p.casRetries = 3
	}

	return p
}

// casAttempt runs fn under a bounded retry budget, retrying only on store
// version conflicts. An exhausted budget surfaces as Unavailable: nothing
// was committed on the conflicting attempt, so the caller may retry safely.
func (s *Usecase) casAttempt(ctx context.Context, p policy, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(p.casRetries, retry.NewConstant(10*time.Millisecond))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := fn(ctx); errors.Is(err, goerror.ErrConflict) {
			return retry.RetryableError(err)
		} else if err != nil {
			return err
		}
		return nil
	})
	if errors.Is(err, goerror.ErrConflict) {
		return goerror.NewUnavailable(err)
	}

	return err
}

// asAppError passes structured errors through and wraps anything else as an
// internal failure.
func asAppError(err error) error {
	var gerr *goerror.Error
	if errors.As(err, &gerr) {
		return err
	}
	return goerror.NewServer(err)
}

// retryAfterAt computes the wait hint for a rate-limited caller: the moment
// the oldest attempt falls out of the window.
func retryAfterAt(oldest time.Time, window time.Duration, now time.Time) time.Duration {
	if oldest.IsZero() {
		return window
	}
	d := oldest.Add(window).Sub(now)
	if d < time.Second {
		d = time.Second
	}
	return d
}
