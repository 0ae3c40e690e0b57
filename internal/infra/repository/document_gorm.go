package repository

import (
	"context"
	"errors"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"
	repo "github.com/rs-labo46/inventory-tracker/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentGormRepository struct {
	db *gorm.DB
}

// DI
func NewDocumentGormRepository(db *gorm.DB) *DocumentGormRepository {
	return &DocumentGormRepository{db: db}
}

// documentsテーブルを用意
func (r *DocumentGormRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&model.DocumentRecord{})
}

// 1件取得
func (r *DocumentGormRepository) Get(ctx context.Context, collection string, id string) (model.Document, error) {
	var rec model.DocumentRecord
	err := r.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Document{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Document{}, err
	}
	return model.Document{ID: rec.DocID, Fields: rec.Data}, nil
}

// 全置換（upsert）
func (r *DocumentGormRepository) Set(ctx context.Context, collection string, doc model.Document) error {
	rec := model.DocumentRecord{
		Collection: collection,
		DocID:      doc.ID,
		Data:       doc.Fields,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&rec).Error
}

// 削除（無くてもエラーにしない）
func (r *DocumentGormRepository) Delete(ctx context.Context, collection string, id string) error {
	return r.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&model.DocumentRecord{}).Error
}

// コレクション全件
func (r *DocumentGormRepository) List(ctx context.Context, collection string) ([]model.Document, error) {
	var recs []model.DocumentRecord
	if err := r.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order(`doc_id COLLATE "C" asc`).
		Find(&recs).Error; err != nil {
		return nil, err
	}

	docs := make([]model.Document, 0, len(recs))
	for _, rec := range recs {
		docs = append(docs, model.Document{ID: rec.DocID, Fields: rec.Data})
	}
	return docs, nil
}
