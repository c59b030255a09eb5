package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/vasthra-labs/vasthra-backend/pkg/errors"
)

// Ledger adjusts product stock inside an order transaction. Both operations
// require the caller's transaction so a checkout rollback also rolls back the
// stock movement.
type Ledger interface {
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

type ledger struct{}

// NewLedger exposes the default stock ledger implementation.
func NewLedger() Ledger {
	return ledger{}
}

// InsufficientStockDetails is attached to reserve failures so the API can
// tell the customer which line could not be honored.
type InsufficientStockDetails struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

func (ledger) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory reserve")
	}

	// Guarded decrement. The stock >= qty predicate makes concurrent
	// checkouts serialize on the row instead of racing a read-then-write.
	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, qty, productID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve inventory")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Zero rows means either an unknown product or not enough stock.
	var available int
	err := tx.WithContext(ctx).
		Raw("SELECT stock FROM products WHERE id = ?", productID).
		Scan(&available).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product stock")
	}

	var exists int64
	if err := tx.WithContext(ctx).
		Raw("SELECT COUNT(1) FROM products WHERE id = ?", productID).
		Scan(&exists).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product")
	}
	if exists == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(InsufficientStockDetails{
			ProductID: productID,
			Requested: qty,
			Available: available,
		})
}

func (ledger) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory release")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, productID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release inventory")
	}
	return nil
}
