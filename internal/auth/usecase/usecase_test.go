package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/plungelab/authgate/internal/auth/entity"
	"github.com/plungelab/authgate/internal/auth/outbound/memstore"
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
)

type fakeNotifier struct {
	mu     sync.Mutex
	emails []string
	codes  []string
	fail   bool
}

func (f *fakeNotifier) SendPasscode(_ context.Context, email, code string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return context.DeadlineExceeded
	}
	f.emails = append(f.emails, email)
	f.codes = append(f.codes, code)
	return nil
}

func (f *fakeNotifier) lastCode(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.codes) == 0 {
		t.Fatal("no passcode was delivered")
	}
	return f.codes[len(f.codes)-1]
}

type fakeIDP struct {
	claims entity.Claims
	err    error
}

func (f *fakeIDP) VerifyToken(context.Context, entity.Provider, string) (entity.Claims, error) {
	if f.err != nil {
		return entity.Claims{}, f.err
	}
	return f.claims, nil
}

type seqID struct{ n int64 }

func (s *seqID) Generate() int64 {
	return atomic.AddInt64(&s.n, 1)
}

type fixture struct {
	uc       *Usecase
	store    *memstore.Store
	notifier *fakeNotifier
	idp      *fakeIDP
	clock    *clock.Fixed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("build validator: %v", err)
	}

	clk := clock.NewFixed(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))

	secret := make([]byte, 64)
	for i := range secret {
		secret[i] = byte(i)
	}
	tokener, err := jwt.NewHS512(jwt.Config{
		Secret:    secret,
		Issuer:    "authgate-test",
		Audiences: []string{"authgate"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("build jwt: %v", err)
	}

	store := memstore.New()
	notifier := &fakeNotifier{}
	idp := &fakeIDP{}

	uc := New(Dependency{
		Store:     store,
		Limiter:   ratelimit.NewMemory(0),
		Notifier:  notifier,
		IDP:       idp,
		Validator: v10,
		Config: config.Static{
			"modules.auth.cas_max_retries": "25",
		},
		Bcrypt:     hash.NewBcrypt(4, ""),
		Generator:  otp.NewNumeric(0),
		UID:        &seqID{},
		Clock:      clk,
		JWT:        tokener,
		Instrument: instrument.NewNoop(),
	})

	return &fixture{uc: uc, store: store, notifier: notifier, idp: idp, clock: clk}
}

func wrongCode(code string) string {
	if code == "000000" {
		return "000001"
	}
	return "000000"
}

func TestIssueThenVerifySucceedsOnce(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	if err := f.uc.Issue(ctx, IssueInput{Email: "a@x.com"}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	code := f.notifier.lastCode(t)

	// Act
	out, err := f.uc.Verify(ctx, VerifyInput{Email: "a@x.com", Code: code})

	// Assert
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if out.AccessToken == "" {
		t.Fatal("expected a session token")
	}
	if !out.Identity.Activated {
		t.Fatal("expected identity to be activated")
	}
	if out.Identity.Email != "a@x.com" {
		t.Fatalf("unexpected email %q", out.Identity.Email)
	}

	rec, err := f.store.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if rec.Challenge != nil {
		t.Fatal("challenge should be cleared after verification")
	}

	// The same code must not be replayable.
	if _, err := f.uc.Verify(ctx, VerifyInput{Email: "a@x.com", Code: code}); !goerror.IsKind(err, goerror.KindNotFound) {
		t.Fatalf("expected NotFound on replay, got %v", err)
	}
}

func TestVerifyWrongCodeIncrementsAttempts(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	if err := f.uc.Issue(ctx, IssueInput{Email: "a@x.com"}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	code := f.notifier.lastCode(t)

	// Act
	_, err := f.uc.Verify(ctx, VerifyInput{Email: "a@x.com", Code: wrongCode(code)})

	// Assert
	if !goerror.IsKind(err, goerror.KindInvalidCode) {
		t.Fatalf("expected InvalidCode, got %v", err)
	}
	rec, _ := f.store.GetByEmail(ctx, "a@x.com")
	if rec.AttemptCount != 1 {
		t.Fatalf("attempt count = %d, want 1", rec.AttemptCount)
	}
}

func TestFourthAttemptLockedOutEvenIfCorrect(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	if err := f.uc.Issue(ctx, IssueInput{Email: "a@x.com"}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	code := f.notifier.lastCode(t)

	for i := 0; i < 3; i++ {
		if _, err := f.uc.Verify(ctx, VerifyInput{Email: "a@x.com", Code: wrongCode(code)}); !goerror.IsKind(err, goerror.KindInvalidCode) {
			t.Fatalf("attempt %d: expected InvalidCode, got %v", i+1, err)
		}
	}

	// Act
	_, err := f.uc.Verify(ctx, VerifyInput{Email: "a@x.com", Code: code})

	// Assert
	if !goerror.IsKind(err, goerror.KindTooManyAttempts) {
		t.Fatalf("expected TooManyAttempts, got %v", err)
	}
	rec, _ := f.store.GetByEmail(ctx, "a@x.com")
	if rec.Challenge != nil {
		t.Fatal("challenge should be cleared after lockout")
	}
}

func TestVerifyAfterExpiryFailsExpired(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	if err := f.uc.Issue(ctx, IssueInput{Email: "a@x.com"}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	code := f.notifier.lastCode(t)
	f.clock.Advance(11 * time.Minute)

	// Act
	_, err := f.uc.Verify(ctx, VerifyInput{Email: "a@x.com", Code: code})

	// Assert
	if !goerror.IsKind(err, goerror.KindExpired) {
		t.Fatalf("expected Expired, got %v", err)
	}
	rec, _ := f.store.GetByEmail(ctx, "a@x.com")
	if rec.Challenge != nil {
		t.Fatal("expired challenge should be cleared")
	}
}

func TestIssueCeilingRateLimited(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := f.uc.Issue(ctx, IssueInput{Email: "a@x.com"}); err != nil {
			t.Fatalf("issue %d: %v", i+1, err)
		}
	}

	// Act
	err := f.uc.Issue(ctx, IssueInput{Email: "a@x.com"})

	// Assert
	if !goerror.IsKind(err, goerror.KindRateLimited) {
		t.Fatalf("expected RateLimited, got %v", err)
	}
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.RetryAfter() <= 0 {
		t.Fatalf("expected a positive retry-after hint, got %v", err)
	}
}

func TestResendEnforcesGapThenDelivers(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	if err := f.uc.Issue(ctx, IssueInput{Email: "a@x.com"}); err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Act
	err := f.uc.Resend(ctx, ResendInput{Email: "a@x.com"})

	// Assert
	if !goerror.IsKind(err, goerror.KindRateLimited) {
		t.Fatalf("expected RateLimited inside the gap, got %v", err)
	}

	f.clock.Advance(61 * time.Second)
	if err := f.uc.Resend(ctx, ResendInput{Email: "a@x.com"}); err != nil {
		t.Fatalf("resend after gap: %v", err)
	}
	if len(f.notifier.codes) != 2 {
		t.Fatalf("delivered %d codes, want 2", len(f.notifier.codes))
	}
}

func TestParallelWrongVerifiesAdvanceAttemptsExactly(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	if err := f.uc.Issue(ctx, IssueInput{Email: "a@x.com"}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	bad := wrongCode(f.notifier.lastCode(t))

	// Act
	const n = 3
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Verify(ctx, VerifyInput{Email: "a@x.com", Code: bad})
		}(i)
	}
	wg.Wait()

	// Assert: no lost updates, each attempt counted exactly once.
	for i, err := range errs {
		if !goerror.IsKind(err, goerror.KindInvalidCode) {
			t.Fatalf("goroutine %d: expected InvalidCode, got %v", i, err)
		}
	}
	rec, _ := f.store.GetByEmail(ctx, "a@x.com")
	if rec.AttemptCount != n {
		t.Fatalf("attempt count = %d, want %d", rec.AttemptCount, n)
	}

	if _, err := f.uc.Verify(ctx, VerifyInput{Email: "a@x.com", Code: bad}); !goerror.IsKind(err, goerror.KindTooManyAttempts) {
		t.Fatalf("expected TooManyAttempts after ceiling, got %v", err)
	}
}

func TestIssueInvalidEmail(t *testing.T) {
	f := newFixture(t)

	err := f.uc.Issue(context.Background(), IssueInput{Email: "not-an-email"})

	if !goerror.IsKind(err, goerror.KindInvalidIdentity) {
		t.Fatalf("expected InvalidIdentity, got %v", err)
	}
}

func TestIssueDeliveryFailureSurfaces(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.notifier.fail = true

	// Act
	err := f.uc.Issue(context.Background(), IssueInput{Email: "a@x.com"})

	// Assert
	if !goerror.IsKind(err, goerror.KindUnavailable) {
		t.Fatalf("expected Unavailable on delivery failure, got %v", err)
	}
}

func TestReconcileFederatedTwiceMergesPresentFields(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.uc.ReconcileFederatedIdentity(ctx, entity.ProviderGoogle, entity.Claims{
		SubjectID: "abc",
		Email:     "b@y.com",
	})
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}

	// Act: second login carries a name but no email.
	second, err := f.uc.ReconcileFederatedIdentity(ctx, entity.ProviderGoogle, entity.Claims{
		SubjectID: "abc",
		Name:      "Bee",
	})

	// Assert
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected one record, got ids %d and %d", first.ID, second.ID)
	}
	if second.DisplayName != "Bee" {
		t.Fatalf("display name = %q, want %q", second.DisplayName, "Bee")
	}
	if second.Email != "b@y.com" {
		t.Fatalf("email = %q, want unchanged %q", second.Email, "b@y.com")
	}
}

func TestSocialLoginInvalidToken(t *testing.T) {
	f := newFixture(t)
	f.idp.err = context.DeadlineExceeded

	_, err := f.uc.SocialLogin(context.Background(), SocialLoginInput{Provider: "google", Token: "bad"})

	if !goerror.IsKind(err, goerror.KindInvalidToken) {
		t.Fatalf("expected InvalidToken, got %v", err)
	}
}

func TestSocialLoginUnsupportedProvider(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.SocialLogin(context.Background(), SocialLoginInput{Provider: "myspace", Token: "tok"})

	if !goerror.IsKind(err, goerror.KindInvalidIdentity) {
		t.Fatalf("expected InvalidIdentity, got %v", err)
	}
}

func TestMe(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	if err := f.uc.Issue(ctx, IssueInput{Email: "a@x.com"}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	out, err := f.uc.Verify(ctx, VerifyInput{Email: "a@x.com", Code: f.notifier.lastCode(t)})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	authed := jwt.SetAuth(ctx, jwt.Claims{IdentityID: out.Identity.ID, Email: out.Identity.Email})

	// Act
	rec, err := f.uc.Me(authed)

	// Assert
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if rec.ID != out.Identity.ID {
		t.Fatalf("id = %d, want %d", rec.ID, out.Identity.ID)
	}

	if _, err := f.uc.Me(ctx); !goerror.IsKind(err, goerror.KindInvalidToken) {
		t.Fatalf("expected InvalidToken without claims, got %v", err)
	}
}
