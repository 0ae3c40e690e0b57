package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"
	repo "github.com/rs-labo46/inventory-tracker/internal/repository"
)

// プロセス内のドキュメントストア（開発・テスト用）
type DocumentMemoryRepository struct {
	mu          sync.RWMutex
	collections map[string]map[string]model.DocumentFields
}

func NewDocumentMemoryRepository() *DocumentMemoryRepository {
	return &DocumentMemoryRepository{collections: map[string]map[string]model.DocumentFields{}}
}

func (r *DocumentMemoryRepository) Get(ctx context.Context, collection string, id string) (model.Document, error) {
	if err := ctx.Err(); err != nil {
		return model.Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	fields, ok := r.collections[collection][id]
	if !ok {
		return model.Document{}, repo.ErrNotFound
	}
	return model.Document{ID: id, Fields: fields}, nil
}

func (r *DocumentMemoryRepository) Set(ctx context.Context, collection string, doc model.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, ok := r.collections[collection]
	if !ok {
		docs = map[string]model.DocumentFields{}
		r.collections[collection] = docs
	}
	docs[doc.ID] = doc.Fields
	return nil
}

func (r *DocumentMemoryRepository) Delete(ctx context.Context, collection string, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.collections[collection], id)
	return nil
}

func (r *DocumentMemoryRepository) List(ctx context.Context, collection string) ([]model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]model.Document, 0, len(r.collections[collection]))
	for id, fields := range r.collections[collection] {
		docs = append(docs, model.Document{ID: id, Fields: fields})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}
