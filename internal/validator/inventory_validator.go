package validator

import (
	"fmt"
	"strings"

	"github.com/rs-labo46/inventory-tracker/internal/usecase"
)

// ドキュメントIDの上限（バイト）
const maxItemNameBytes = 1500

type inventoryValidator struct{}

// Usecaseは interface を依存注入
func NewInventoryValidator() usecase.ItemNameValidator {
	return &inventoryValidator{}
}

// 品目名（=ドキュメントID）を検証。名前は加工しない
func (v *inventoryValidator) ValidateItemName(name string) error {
	// 必須チェック
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name required", usecase.ErrInvalidItemName)
	}
	if len(name) > maxItemNameBytes {
		return fmt.Errorf("%w: name too long", usecase.ErrInvalidItemName)
	}

	// ドキュメントIDに使えない形
	if strings.Contains(name, "/") {
		return fmt.Errorf("%w: name must not contain '/'", usecase.ErrInvalidItemName)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: name must not be '.' or '..'", usecase.ErrInvalidItemName)
	}
	if len(name) >= 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return fmt.Errorf("%w: name must not match __.*__", usecase.ErrInvalidItemName)
	}
	return nil
}
