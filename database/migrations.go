package database

import (
	"gorm.io/gorm"

	"github.com/queiroz-sistemas/supermercado-api/models"
	"github.com/queiroz-sistemas/supermercado-api/utils"
)

// Migrate runs the idempotent startup migration before the server
// accepts traffic: schema, legacy order-number backfill, then the
// uniqueness index that makes the per-tenant sequence race-safe.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Supermarket{},
		&models.SupermarketHistory{},
		&models.User{},
		&models.Client{},
		&models.Order{},
		&models.OrderItem{},
		&models.Invoice{},
	)
	if err != nil {
		return err
	}

	if err := backfillOrderNumbers(db); err != nil {
		return err
	}

	// The application computes max+1 inside the creating transaction;
	// this index is what turns a lost race into a retryable conflict
	// instead of a silent duplicate.
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_pedidos_tenant_numero ON pedidos (tenant_id, numero_pedido)",
	).Error
}

// backfillOrderNumbers assigns sequential numbers to legacy orders that
// predate the numero_pedido column, per tenant, ordered by order date
// then id. Orders that already carry a number are left untouched, so
// running this twice is a no-op.
func backfillOrderNumbers(db *gorm.DB) error {
	var pending []models.Order
	err := db.Where("numero_pedido = 0 OR numero_pedido IS NULL").
		Order("tenant_id asc, data_pedido asc, id asc").
		Find(&pending).Error
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		counters := make(map[uint]int)
		for _, order := range pending {
			next, seen := counters[order.TenantID]
			if !seen {
				// Resume after any already-numbered rows for the tenant.
				var current int
				err := tx.Model(&models.Order{}).
					Where("tenant_id = ?", order.TenantID).
					Select("COALESCE(MAX(numero_pedido), 0)").
					Scan(&current).Error
				if err != nil {
					return err
				}
				next = current
			}
			next++
			counters[order.TenantID] = next

			err := tx.Model(&models.Order{}).
				Where("id = ?", order.ID).
				Update("numero_pedido", next).Error
			if err != nil {
				return err
			}
		}
		utils.InfoLogger.Printf("backfilled numero_pedido for %d legacy orders", len(pending))
		return nil
	})
}
