package usecase

import (
	"sync"
	"time"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"
)

// 画面側と同期エンジンで共有するアプリ状態。
// スナップショットは丸ごと差し替えるだけ（差分は持たない）
type InventoryState struct {
	mu       sync.RWMutex
	snapshot model.InventorySnapshot
	subs     subscribers[model.InventorySnapshot]
}

func NewInventoryState() *InventoryState {
	return &InventoryState{snapshot: model.InventorySnapshot{Items: []model.InventoryItem{}}}
}

func (s *InventoryState) Snapshot() model.InventorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

// スナップショットを置き換えて購読者に通知
func (s *InventoryState) replace(items []model.InventoryItem, now time.Time) model.InventorySnapshot {
	s.mu.Lock()
	s.snapshot = model.InventorySnapshot{
		Items:       items,
		Version:     s.snapshot.Version + 1,
		RefreshedAt: now,
	}
	out := s.snapshot.Clone()
	s.mu.Unlock()

	s.subs.publish(out.Clone())
	return out
}

// 再描画のトリガー用
func (s *InventoryState) Subscribe(fn func(model.InventorySnapshot)) func() {
	return s.subs.subscribe(fn)
}
