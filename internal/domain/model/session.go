package model

import "time"

// IDプロバイダから返る外部ユーザー
type UserIdentity struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// Userがnilならサインアウト状態
type Session struct {
	User      *UserIdentity `json:"user"`
	ExpiresAt time.Time     `json:"expires_at"`
}

func (s Session) SignedIn() bool {
	return s.User != nil
}

type SessionChangeKind string

const (
	SessionSignedIn  SessionChangeKind = "SIGNED_IN"
	SessionSignedOut SessionChangeKind = "SIGNED_OUT"
)

// 現在ユーザーの変化通知
type SessionChange struct {
	Kind SessionChangeKind `json:"kind"`
	User UserIdentity      `json:"user"`
	At   time.Time         `json:"at"`
}
