package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"
	repo "github.com/rs-labo46/inventory-tracker/internal/repository"

	"github.com/redis/go-redis/v9"
)

const collectionKeyPrefix = "doc:"

// コレクション = 1つのハッシュ、フィールド = ドキュメントID
type DocumentRedisRepository struct {
	client *redis.Client
}

func NewDocumentRedisRepository(client *redis.Client) *DocumentRedisRepository {
	return &DocumentRedisRepository{client: client}
}

func collectionKey(collection string) string {
	return collectionKeyPrefix + collection
}

func (r *DocumentRedisRepository) Get(ctx context.Context, collection string, id string) (model.Document, error) {
	raw, err := r.client.HGet(ctx, collectionKey(collection), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Document{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Document{}, err
	}

	var fields model.DocumentFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.Document{}, fmt.Errorf("decode document %q: %w", id, err)
	}
	return model.Document{ID: id, Fields: fields}, nil
}

func (r *DocumentRedisRepository) Set(ctx context.Context, collection string, doc model.Document) error {
	raw, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("encode document %q: %w", doc.ID, err)
	}
	return r.client.HSet(ctx, collectionKey(collection), doc.ID, raw).Err()
}

func (r *DocumentRedisRepository) Delete(ctx context.Context, collection string, id string) error {
	return r.client.HDel(ctx, collectionKey(collection), id).Err()
}

func (r *DocumentRedisRepository) List(ctx context.Context, collection string) ([]model.Document, error) {
	all, err := r.client.HGetAll(ctx, collectionKey(collection)).Result()
	if err != nil {
		return nil, err
	}

	docs := make([]model.Document, 0, len(all))
	for id, raw := range all {
		var fields model.DocumentFields
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("decode document %q: %w", id, err)
		}
		docs = append(docs, model.Document{ID: id, Fields: fields})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}
