package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"
)

// 外部IDプロバイダ（OAuth）への委譲の約束
type IdentityProvider interface {
	// 同意画面のURL
	AuthCodeURL(state string, verifier string) string
	// PKCEのverifier
	NewVerifier() string
	// 認可コード → ユーザー
	Exchange(ctx context.Context, code string, verifier string) (model.UserIdentity, error)
}

// セッショントークンを発行・検証する約束
type SessionTokenIssuer interface {
	Issue(user model.UserIdentity, now time.Time) (token string, expiresAt time.Time, err error)
	Parse(token string, now time.Time) (model.Session, error)
}

type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}

// サインイン開始時にhandlerがCookieに詰める値
type SignInRequest struct {
	URL      string
	State    string
	Verifier string
}

type SessionUsecase struct {
	provider IdentityProvider
	issuer   SessionTokenIssuer
	idGen    IDGenerator
	clock    Clock
	subs     subscribers[model.SessionChange]
}

// DI
func NewSessionUsecase(provider IdentityProvider, issuer SessionTokenIssuer, idGen IDGenerator, clock Clock) *SessionUsecase {
	return &SessionUsecase{
		provider: provider,
		issuer:   issuer,
		idGen:    idGen,
		clock:    clock,
	}
}

// state + PKCE を作って同意画面のURLを返す
func (u *SessionUsecase) BeginSignIn() SignInRequest {
	state := u.idGen.NewID()
	verifier := u.provider.NewVerifier()
	return SignInRequest{
		URL:      u.provider.AuthCodeURL(state, verifier),
		State:    state,
		Verifier: verifier,
	}
}

// コールバック：コード交換 → セッショントークン発行 → 通知
func (u *SessionUsecase) CompleteSignIn(ctx context.Context, code string, verifier string) (model.Session, string, error) {
	if code == "" || verifier == "" {
		return model.Session{}, "", ErrUnauthorized
	}

	user, err := u.provider.Exchange(ctx, code, verifier)
	if err != nil {
		return model.Session{}, "", fmt.Errorf("exchange code: %w", errors.Join(ErrUnauthorized, err))
	}
	if user.Subject == "" {
		return model.Session{}, "", fmt.Errorf("%w: missing subject", ErrUnauthorized)
	}

	now := u.clock.Now()
	token, expiresAt, err := u.issuer.Issue(user, now)
	if err != nil {
		return model.Session{}, "", fmt.Errorf("issue session: %w", err)
	}

	u.subs.publish(model.SessionChange{Kind: model.SessionSignedIn, User: user, At: now})
	return model.Session{User: &user, ExpiresAt: expiresAt}, token, nil
}

// トークン → セッション。無効/期限切れは ErrUnauthorized
func (u *SessionUsecase) Authenticate(token string) (model.Session, error) {
	if token == "" {
		return model.Session{}, ErrUnauthorized
	}
	s, err := u.issuer.Parse(token, u.clock.Now())
	if err != nil {
		return model.Session{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return s, nil
}

// サインアウト。Cookieの削除はhandler側
func (u *SessionUsecase) SignOut(ctx context.Context, s model.Session) error {
	if !s.SignedIn() {
		return ErrUnauthorized
	}
	u.subs.publish(model.SessionChange{Kind: model.SessionSignedOut, User: *s.User, At: u.clock.Now()})
	return nil
}

// 現在ユーザーの変化を購読
func (u *SessionUsecase) Subscribe(fn func(model.SessionChange)) func() {
	return u.subs.subscribe(fn)
}
