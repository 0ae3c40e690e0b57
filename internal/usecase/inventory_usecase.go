package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"
	repo "github.com/rs-labo46/inventory-tracker/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
)

var tracer = otel.Tracer("github.com/rs-labo46/inventory-tracker/internal/usecase")

// usecaseが品目名の検証に依存する約束
type ItemNameValidator interface {
	ValidateItemName(name string) error
}

// InventoryUsecase はストアとスナップショットを同期させる。
//
// AddItem/RemoveItem は「読む→書く」の2手で、バージョン確認もアトミックな増減もしない。
// 同じ品目への操作が重なると後勝ちで更新が1回分消えることがある（既知の競合）。
type InventoryUsecase struct {
	store     repo.DocumentStore
	state     *InventoryState
	validator ItemNameValidator
	now       func() time.Time
}

// DI
func NewInventoryUsecase(store repo.DocumentStore, state *InventoryState, validator ItemNameValidator) *InventoryUsecase {
	return &InventoryUsecase{
		store:     store,
		state:     state,
		validator: validator,
		now:       time.Now,
	}
}

// 一覧を取り直してスナップショットを丸ごと置き換える。
// 失敗したらスナップショットはそのまま
func (u *InventoryUsecase) Refresh(ctx context.Context) (model.InventorySnapshot, error) {
	ctx, span := tracer.Start(ctx, "InventoryUsecase.Refresh")
	defer span.End()

	snap, err := u.refresh(ctx)
	if err != nil {
		return model.InventorySnapshot{}, fail(span, err)
	}
	span.SetAttributes(attribute.Int("inventory.items", len(snap.Items)))
	return snap, nil
}

func (u *InventoryUsecase) refresh(ctx context.Context) (model.InventorySnapshot, error) {
	docs, err := u.store.List(ctx, model.InventoryCollection)
	if err != nil {
		return model.InventorySnapshot{}, classify("list inventory", err)
	}

	items := make([]model.InventoryItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.ToItem())
	}
	return u.state.replace(items, u.now()), nil
}

// 1個追加。無ければ quantity=1 で作る
func (u *InventoryUsecase) AddItem(ctx context.Context, name string) (model.InventorySnapshot, error) {
	ctx, span := tracer.Start(ctx, "InventoryUsecase.AddItem", trace.WithAttributes(attribute.String("inventory.item", name)))
	defer span.End()

	if err := u.validator.ValidateItemName(name); err != nil {
		return model.InventorySnapshot{}, fail(span, err)
	}

	doc, err := u.store.Get(ctx, model.InventoryCollection, name)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		doc = model.Document{ID: name, Fields: model.DocumentFields{Quantity: 1}}
	case err != nil:
		return model.InventorySnapshot{}, fail(span, classify("get item", err))
	default:
		doc.Fields.Quantity++
	}

	if err := u.store.Set(ctx, model.InventoryCollection, doc); err != nil {
		return model.InventorySnapshot{}, fail(span, classify("set item", err))
	}

	snap, err := u.refresh(ctx)
	if err != nil {
		return model.InventorySnapshot{}, fail(span, err)
	}
	return snap, nil
}

// 1個減らす。1→0 でドキュメントごと削除、無ければ何もしない
func (u *InventoryUsecase) RemoveItem(ctx context.Context, name string) (model.InventorySnapshot, error) {
	ctx, span := tracer.Start(ctx, "InventoryUsecase.RemoveItem", trace.WithAttributes(attribute.String("inventory.item", name)))
	defer span.End()

	if err := u.validator.ValidateItemName(name); err != nil {
		return model.InventorySnapshot{}, fail(span, err)
	}

	doc, err := u.store.Get(ctx, model.InventoryCollection, name)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		// 無い品目は何もしない（refreshだけ）
	case err != nil:
		return model.InventorySnapshot{}, fail(span, classify("get item", err))
	case doc.Fields.Quantity <= 1:
		if err := u.store.Delete(ctx, model.InventoryCollection, name); err != nil {
			return model.InventorySnapshot{}, fail(span, classify("delete item", err))
		}
	default:
		doc.Fields.Quantity--
		if err := u.store.Set(ctx, model.InventoryCollection, doc); err != nil {
			return model.InventorySnapshot{}, fail(span, classify("set item", err))
		}
	}

	snap, err := u.refresh(ctx)
	if err != nil {
		return model.InventorySnapshot{}, fail(span, err)
	}
	return snap, nil
}

// 現在のスナップショット（ストアは読まない）
func (u *InventoryUsecase) Snapshot() model.InventorySnapshot {
	return u.state.Snapshot()
}

// スナップショットを名前の部分一致で絞り込む（大文字小文字は区別しない）
func (u *InventoryUsecase) Search(query string) []model.InventoryItem {
	return FilterItems(u.state.Snapshot().Items, query)
}

func (u *InventoryUsecase) Subscribe(fn func(model.InventorySnapshot)) func() {
	return u.state.Subscribe(fn)
}

func FilterItems(items []model.InventoryItem, query string) []model.InventoryItem {
	out := []model.InventoryItem{}
	if query == "" {
		return append(out, items...)
	}

	fold := cases.Fold()
	q := fold.String(query)
	for _, it := range items {
		if strings.Contains(fold.String(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}

// 接続断なら ErrStoreUnavailable を付ける
func classify(op string, err error) error {
	if repo.IsUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
