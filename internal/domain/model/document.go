package model

// ドキュメントストアに保存される1件
type Document struct {
	ID     string         `json:"id"`
	Fields DocumentFields `json:"fields"`
}

// ドキュメント本体（全置換で書き込む）
type DocumentFields struct {
	Quantity int64 `json:"quantity"`
}

// ドキュメント → 在庫品目
func (d Document) ToItem() InventoryItem {
	return InventoryItem{Name: d.ID, Quantity: d.Fields.Quantity}
}

// GORMで使うテーブル行。collection + doc_id が主キー
type DocumentRecord struct {
	Collection string         `gorm:"primaryKey;type:varchar(64)"`
	DocID      string         `gorm:"column:doc_id;primaryKey;type:text"`
	Data       DocumentFields `gorm:"serializer:json;type:jsonb;not null"`
	UpdatedAt  int64          `gorm:"autoUpdateTime:milli"`
}

func (DocumentRecord) TableName() string {
	return "documents"
}
