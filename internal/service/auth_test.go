package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/birthday-board/internal/apperror"
	"github.com/sakif/birthday-board/internal/auth"
	"github.com/sakif/birthday-board/internal/model"
	"github.com/sakif/birthday-board/internal/repository"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeProvider is an in-memory IdentityProvider. Hand-written fakes (not a
// mock framework) keep the tests dependency-free and readable.
type fakeProvider struct {
	tokens     map[string]*oauth2.Token // keyed by authorization code
	identity   *auth.GoogleUser
	exchangeErr error
	identityErr error
}

func (f *fakeProvider) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	token, ok := f.tokens[code]
	if !ok {
		return nil, apperror.UpstreamAuth("exchanging authorization code failed", nil)
	}
	return token, nil
}

func (f *fakeProvider) FetchIdentity(_ context.Context, _ *oauth2.Token) (*auth.GoogleUser, error) {
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	return f.identity, nil
}

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	users    map[string]*model.User // keyed by internal ID
	byGoogle map[string]*model.User // keyed by Google ID (upsert key)
	nextID   int

	// set to simulate backend failures
	upsertErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[string]*model.User),
		byGoogle: make(map[string]*model.User),
	}
}

func (f *fakeUserRepo) Upsert(_ context.Context, user *model.User) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if existing, ok := f.byGoogle[user.GoogleID]; ok {
		// UPDATE path — keep the internal ID, refresh profile and tokens.
		// An empty refresh token preserves the stored one.
		existing.Email = user.Email
		existing.Name = user.Name
		existing.AvatarURL = user.AvatarURL
		existing.AccessToken = user.AccessToken
		if user.RefreshToken != "" {
			existing.RefreshToken = user.RefreshToken
		}
		existing.UpdatedAt = time.Now()
		*user = *existing
		return nil
	}
	// INSERT path — assign a new internal ID.
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.ID] = &stored
	f.byGoogle[user.GoogleID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (f *fakeUserRepo) GetTokens(_ context.Context, id string) (repository.TokenPair, error) {
	if f.getErr != nil {
		return repository.TokenPair{}, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return repository.TokenPair{}, apperror.NotFound("user", id)
	}
	return repository.TokenPair{AccessToken: u.AccessToken, RefreshToken: u.RefreshToken}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testSessions(t *testing.T) *auth.SessionService {
	t.Helper()
	s, err := auth.NewSessionService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewSessionService: %v", err)
	}
	return s
}

// =========================================================================
// CompleteLogin TESTS
// =========================================================================

func TestCompleteLogin_FullFlow(t *testing.T) {
	// Scenario: code "abc123" exchanges to {AT1, RT1}; identity is g-42 /
	// a@x.com / Ann; the session cookie must decode to the store-assigned
	// user id plus the Google id and access token.
	provider := &fakeProvider{
		tokens: map[string]*oauth2.Token{
			"abc123": {AccessToken: "AT1", RefreshToken: "RT1"},
		},
		identity: &auth.GoogleUser{ID: "g-42", Email: "a@x.com", Name: "Ann"},
	}
	repo := newFakeUserRepo()
	sessions := testSessions(t)
	svc := NewAuthService(provider, repo, sessions, testLogger())

	result, err := svc.CompleteLogin(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("CompleteLogin() error = %v", err)
	}

	if result.User.ID == "" {
		t.Fatal("User.ID should be assigned by the store")
	}
	if result.User.GoogleID != "g-42" {
		t.Errorf("User.GoogleID = %q, want %q", result.User.GoogleID, "g-42")
	}
	if result.User.AccessToken != "AT1" || result.User.RefreshToken != "RT1" {
		t.Errorf("stored tokens = {%q, %q}, want {AT1, RT1}",
			result.User.AccessToken, result.User.RefreshToken)
	}

	sess, err := sessions.Validate(result.SessionToken)
	if err != nil {
		t.Fatalf("Validate(session token) error = %v", err)
	}
	want := auth.Session{UserID: result.User.ID, GoogleID: "g-42", AccessToken: "AT1"}
	if sess != want {
		t.Errorf("session = %+v, want %+v", sess, want)
	}
}

func TestCompleteLogin_EmptyCode(t *testing.T) {
	svc := NewAuthService(&fakeProvider{}, newFakeUserRepo(), testSessions(t), testLogger())

	_, err := svc.CompleteLogin(context.Background(), "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("CompleteLogin(\"\") error = %v, want ErrValidation", err)
	}
}

func TestCompleteLogin_ExchangeFails(t *testing.T) {
	provider := &fakeProvider{
		exchangeErr: apperror.UpstreamAuth("exchanging authorization code failed", nil),
	}
	repo := newFakeUserRepo()
	svc := NewAuthService(provider, repo, testSessions(t), testLogger())

	_, err := svc.CompleteLogin(context.Background(), "bad-code")
	if !errors.Is(err, apperror.ErrUpstreamAuth) {
		t.Fatalf("error = %v, want ErrUpstreamAuth", err)
	}
	if len(repo.users) != 0 {
		t.Error("no user should be written when the exchange fails")
	}
}

func TestCompleteLogin_UpsertFails_NoSession(t *testing.T) {
	// A session must never reference a user record that failed to persist.
	provider := &fakeProvider{
		tokens:   map[string]*oauth2.Token{"abc123": {AccessToken: "AT1"}},
		identity: &auth.GoogleUser{ID: "g-42", Name: "Ann"},
	}
	repo := newFakeUserRepo()
	repo.upsertErr = apperror.Persistence("inserting user", errors.New("disk full"))
	svc := NewAuthService(provider, repo, testSessions(t), testLogger())

	result, err := svc.CompleteLogin(context.Background(), "abc123")
	if !errors.Is(err, apperror.ErrPersistence) {
		t.Fatalf("error = %v, want ErrPersistence", err)
	}
	if result != nil {
		t.Error("CompleteLogin() should not return a result when the upsert fails")
	}
}

func TestCompleteLogin_RepeatLoginKeepsInternalID(t *testing.T) {
	provider := &fakeProvider{
		tokens:   map[string]*oauth2.Token{"code-1": {AccessToken: "AT1", RefreshToken: "RT1"}},
		identity: &auth.GoogleUser{ID: "g-42", Email: "a@x.com", Name: "Ann"},
	}
	repo := newFakeUserRepo()
	svc := NewAuthService(provider, repo, testSessions(t), testLogger())

	first, err := svc.CompleteLogin(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("first login error: %v", err)
	}

	// Second login: new code, rotated access token, no refresh token
	// (Google omits it after the first consent).
	provider.tokens = map[string]*oauth2.Token{"code-2": {AccessToken: "AT2"}}
	second, err := svc.CompleteLogin(context.Background(), "code-2")
	if err != nil {
		t.Fatalf("second login error: %v", err)
	}

	if second.User.ID != first.User.ID {
		t.Errorf("internal ID changed across logins: %q → %q", first.User.ID, second.User.ID)
	}
	if second.User.AccessToken != "AT2" {
		t.Errorf("AccessToken = %q, want rotated AT2", second.User.AccessToken)
	}
	if second.User.RefreshToken != "RT1" {
		t.Errorf("RefreshToken = %q, want preserved RT1", second.User.RefreshToken)
	}
}
