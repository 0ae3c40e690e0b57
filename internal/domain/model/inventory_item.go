package model

import "time"

// 在庫コレクション名
const InventoryCollection = "inventory"

// 在庫の1品目。Nameがドキュメントキー（大文字小文字を区別）
type InventoryItem struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// 在庫一覧のスナップショット。refreshのたびに丸ごと作り直す
type InventorySnapshot struct {
	Items       []InventoryItem `json:"items"`
	Version     uint64          `json:"version"`
	RefreshedAt time.Time       `json:"refreshed_at"`
}

// 呼び出し側が書き換えても状態に影響しないようにコピーを返す
func (s InventorySnapshot) Clone() InventorySnapshot {
	items := make([]InventoryItem, len(s.Items))
	copy(items, s.Items)
	s.Items = items
	return s
}

// 品目を名前で探す
func (s InventorySnapshot) Find(name string) (InventoryItem, bool) {
	for _, it := range s.Items {
		if it.Name == name {
			return it, true
		}
	}
	return InventoryItem{}, false
}
