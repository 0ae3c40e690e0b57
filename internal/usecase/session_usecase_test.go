package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"
	"github.com/rs-labo46/inventory-tracker/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type SessProviderMock struct{ mock.Mock }

func (m *SessProviderMock) AuthCodeURL(state string, verifier string) string {
	args := m.Called(state, verifier)
	return args.String(0)
}

func (m *SessProviderMock) NewVerifier() string {
	return m.Called().String(0)
}

func (m *SessProviderMock) Exchange(ctx context.Context, code string, verifier string) (model.UserIdentity, error) {
	args := m.Called(ctx, code, verifier)
	u, _ := args.Get(0).(model.UserIdentity)
	return u, args.Error(1)
}

type SessIssuerMock struct{ mock.Mock }

func (m *SessIssuerMock) Issue(user model.UserIdentity, now time.Time) (string, time.Time, error) {
	args := m.Called(user, now)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *SessIssuerMock) Parse(token string, now time.Time) (model.Session, error) {
	args := m.Called(token, now)
	s, _ := args.Get(0).(model.Session)
	return s, args.Error(1)
}

type fixedID string

func (f fixedID) NewID() string { return string(f) }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var sessNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newSessionUC() (*usecase.SessionUsecase, *SessProviderMock, *SessIssuerMock) {
	p := new(SessProviderMock)
	i := new(SessIssuerMock)
	return usecase.NewSessionUsecase(p, i, fixedID("state-1"), fixedClock{t: sessNow}), p, i
}

// =====================
// BeginSignIn
// =====================

func TestSessionUsecase_BeginSignIn(t *testing.T) {
	uc, p, _ := newSessionUC()
	p.On("NewVerifier").Return("verifier-1")
	p.On("AuthCodeURL", "state-1", "verifier-1").Return("https://accounts.example/auth?state=state-1")

	req := uc.BeginSignIn()
	assert.Equal(t, "state-1", req.State)
	assert.Equal(t, "verifier-1", req.Verifier)
	assert.Equal(t, "https://accounts.example/auth?state=state-1", req.URL)
}

// =====================
// CompleteSignIn
// =====================

func TestSessionUsecase_CompleteSignIn_Success(t *testing.T) {
	uc, p, i := newSessionUC()
	user := model.UserIdentity{Subject: "g-1", Email: "a@example.com", Name: "A"}
	exp := sessNow.Add(time.Hour)

	p.On("Exchange", mock.Anything, "code-1", "verifier-1").Return(user, nil)
	i.On("Issue", user, sessNow).Return("tok", exp, nil)

	var changes []model.SessionChange
	uc.Subscribe(func(c model.SessionChange) { changes = append(changes, c) })

	s, token, err := uc.CompleteSignIn(context.Background(), "code-1", "verifier-1")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.True(t, s.SignedIn())
	assert.Equal(t, user, *s.User)
	assert.Equal(t, exp, s.ExpiresAt)

	require.Len(t, changes, 1)
	assert.Equal(t, model.SessionSignedIn, changes[0].Kind)
	assert.Equal(t, user, changes[0].User)
}

func TestSessionUsecase_CompleteSignIn_MissingCode(t *testing.T) {
	uc, p, _ := newSessionUC()

	_, _, err := uc.CompleteSignIn(context.Background(), "", "verifier-1")
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
	p.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionUsecase_CompleteSignIn_ExchangeFails(t *testing.T) {
	uc, p, _ := newSessionUC()
	p.On("Exchange", mock.Anything, "bad", "v").Return(nil, errors.New("invalid_grant"))

	_, _, err := uc.CompleteSignIn(context.Background(), "bad", "v")
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
	assert.ErrorContains(t, err, "invalid_grant")
}

func TestSessionUsecase_CompleteSignIn_NoSubject(t *testing.T) {
	uc, p, _ := newSessionUC()
	p.On("Exchange", mock.Anything, "c", "v").Return(model.UserIdentity{Email: "x@example.com"}, nil)

	_, _, err := uc.CompleteSignIn(context.Background(), "c", "v")
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
}

// =====================
// Authenticate / SignOut
// =====================

func TestSessionUsecase_Authenticate(t *testing.T) {
	uc, _, i := newSessionUC()
	user := model.UserIdentity{Subject: "g-1"}
	i.On("Parse", "good", sessNow).Return(model.Session{User: &user}, nil)
	i.On("Parse", "expired", sessNow).Return(nil, errors.New("token is expired"))

	s, err := uc.Authenticate("good")
	require.NoError(t, err)
	assert.Equal(t, "g-1", s.User.Subject)

	_, err = uc.Authenticate("expired")
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)

	_, err = uc.Authenticate("")
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
}

func TestSessionUsecase_SignOut(t *testing.T) {
	uc, _, _ := newSessionUC()
	user := model.UserIdentity{Subject: "g-1"}

	var kinds []model.SessionChangeKind
	unsubscribe := uc.Subscribe(func(c model.SessionChange) { kinds = append(kinds, c.Kind) })

	require.NoError(t, uc.SignOut(context.Background(), model.Session{User: &user}))
	assert.ErrorIs(t, uc.SignOut(context.Background(), model.Session{}), usecase.ErrUnauthorized)

	unsubscribe()
	unsubscribe()
	require.NoError(t, uc.SignOut(context.Background(), model.Session{User: &user}))

	assert.Equal(t, []model.SessionChangeKind{model.SessionSignedOut}, kinds)
}
