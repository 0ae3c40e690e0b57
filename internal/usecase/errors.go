package usecase

import (
	"errors"

	"github.com/rs-labo46/inventory-tracker/internal/repository"
)

var (
	// ストアに接続できない（オフライン）
	ErrStoreUnavailable = errors.New("store unavailable")
	// 品目名が不正
	ErrInvalidItemName = errors.New("invalid item name")
	// 401 セッションが無い/不正
	ErrUnauthorized = errors.New("unauthorized")
)

// エラーの種類
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// ユーザーにアラートを出す
	KindStoreUnavailable
	KindInvalidInput
	// ログだけ残す
	KindUnclassified
)

func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrStoreUnavailable), repository.IsUnavailable(err):
		return KindStoreUnavailable
	case errors.Is(err, ErrInvalidItemName):
		return KindInvalidInput
	default:
		return KindUnclassified
	}
}

// 操作ごとのアラート文言
type Operation string

const (
	OpRefresh Operation = "refresh"
	OpAdd     Operation = "add"
	OpRemove  Operation = "remove"
)

func (op Operation) AlertMessage() string {
	switch op {
	case OpAdd:
		return "Failed to add item. Please check your internet connection."
	case OpRemove:
		return "Failed to remove item. Please check your internet connection."
	default:
		return "Failed to update inventory. Please check your internet connection."
	}
}
