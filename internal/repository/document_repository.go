package repository

import (
	"context"
	"errors"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 接続できない（オフライン）ときに各実装がラップして返す
var ErrUnavailable = errors.New("store unavailable")

// ドキュメントストアの永続化だけを約束。
// クエリの絞り込みはしない（フィルタはクライアント側）
type DocumentStore interface {
	// 無ければ ErrNotFound（存在確認と読み取りを兼ねる）
	Get(ctx context.Context, collection string, id string) (model.Document, error)

	// ドキュメント全体を置き換える（無ければ作成）
	Set(ctx context.Context, collection string, doc model.Document) error

	// 無いドキュメントの削除はエラーにしない
	Delete(ctx context.Context, collection string, id string) error

	// コレクション全件。id昇順
	List(ctx context.Context, collection string) ([]model.Document, error)
}
