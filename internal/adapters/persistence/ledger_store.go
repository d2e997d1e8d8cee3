package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmarrick/novaforge/internal/domain/ledger"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// GormLedgerStore implements ledger.Store using GORM. Reserve and Refund run
// inside database transactions so concurrent callers cannot double-spend the
// same balance.
type GormLedgerStore struct {
	db *gorm.DB
}

// NewGormLedgerStore creates a new GORM ledger store
func NewGormLedgerStore(db *gorm.DB) *GormLedgerStore {
	return &GormLedgerStore{db: db}
}

// Reserve atomically checks and debits every required material. On shortfall
// nothing is debited and *InsufficientMaterialsError lists what was missing.
func (s *GormLedgerStore) Reserve(ctx context.Context, ownerID shared.OwnerID, requirements map[string]int) (*ledger.Reservation, error) {
	if len(requirements) == 0 {
		return nil, fmt.Errorf("empty requirements")
	}

	reservationID := uuid.New().String()
	createdAt := time.Now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		missing := make(map[string]int)
		for _, kind := range sortedKinds(requirements) {
			required := requirements[kind]
			available, err := balanceInTx(tx, ownerID.Value(), kind)
			if err != nil {
				return err
			}
			if available < required {
				missing[kind] = required - available
			}
		}
		if len(missing) > 0 {
			return &ledger.InsufficientMaterialsError{Missing: missing}
		}

		// Guarded decrements: quantity >= ? catches a balance that moved
		// between the check above and this write
		for _, kind := range sortedKinds(requirements) {
			required := requirements[kind]
			result := tx.Model(&LedgerEntryModel{}).
				Where("owner_id = ? AND kind = ? AND quantity >= ?", ownerID.Value(), kind, required).
				Update("quantity", gorm.Expr("quantity - ?", required))
			if result.Error != nil {
				return fmt.Errorf("failed to debit %s: %w", kind, result.Error)
			}
			if result.RowsAffected == 0 {
				available, err := balanceInTx(tx, ownerID.Value(), kind)
				if err != nil {
					return err
				}
				return &ledger.InsufficientMaterialsError{
					Missing: map[string]int{kind: required - available},
				}
			}
		}

		materialsJSON, err := json.Marshal(requirements)
		if err != nil {
			return fmt.Errorf("failed to marshal materials: %w", err)
		}
		model := &ReservationModel{
			ID:        reservationID,
			OwnerID:   ownerID.Value(),
			Materials: string(materialsJSON),
			CreatedAt: createdAt,
		}
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ledger.NewReservation(reservationID, ownerID, requirements, createdAt), nil
}

// Credit adds qty units of kind to the owner's balance
func (s *GormLedgerStore) Credit(ctx context.Context, ownerID shared.OwnerID, kind string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("credit quantity must be positive, got %d", qty)
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "kind"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", qty),
		}),
	}).Create(&LedgerEntryModel{
		OwnerID:  ownerID.Value(),
		Kind:     kind,
		Quantity: qty,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to credit %s: %w", kind, result.Error)
	}
	return nil
}

// Debit removes qty units of kind, failing if fewer are held
func (s *GormLedgerStore) Debit(ctx context.Context, ownerID shared.OwnerID, kind string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("debit quantity must be positive, got %d", qty)
	}

	result := s.db.WithContext(ctx).Model(&LedgerEntryModel{}).
		Where("owner_id = ? AND kind = ? AND quantity >= ?", ownerID.Value(), kind, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if result.Error != nil {
		return fmt.Errorf("failed to debit %s: %w", kind, result.Error)
	}
	if result.RowsAffected == 0 {
		available, err := s.Balance(ctx, ownerID, kind)
		if err != nil {
			return err
		}
		return &ledger.InsufficientQuantityError{
			Kind:      kind,
			Requested: qty,
			Available: available,
		}
	}
	return nil
}

// Refund credits a reservation's materials back to its owner. The refunded_at
// stamp makes a second refund of the same token fail.
func (s *GormLedgerStore) Refund(ctx context.Context, reservationID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model ReservationModel
		result := tx.Where("id = ?", reservationID).First(&model)
		if result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				return &ledger.ErrReservationNotFound{ID: reservationID}
			}
			return fmt.Errorf("failed to find reservation: %w", result.Error)
		}
		if model.RefundedAt != nil {
			return fmt.Errorf("reservation %s already refunded", reservationID)
		}

		now := time.Now().UTC()
		stamp := tx.Model(&ReservationModel{}).
			Where("id = ? AND refunded_at IS NULL", reservationID).
			Update("refunded_at", now)
		if stamp.Error != nil {
			return fmt.Errorf("failed to stamp refund: %w", stamp.Error)
		}
		if stamp.RowsAffected == 0 {
			return fmt.Errorf("reservation %s already refunded", reservationID)
		}

		var materials map[string]int
		if err := json.Unmarshal([]byte(model.Materials), &materials); err != nil {
			return fmt.Errorf("failed to unmarshal materials: %w", err)
		}
		for _, kind := range sortedKinds(materials) {
			qty := materials[kind]
			result := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "owner_id"}, {Name: "kind"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"quantity": gorm.Expr("quantity + ?", qty),
				}),
			}).Create(&LedgerEntryModel{
				OwnerID:  model.OwnerID,
				Kind:     kind,
				Quantity: qty,
			})
			if result.Error != nil {
				return fmt.Errorf("failed to refund %s: %w", kind, result.Error)
			}
		}
		return nil
	})
}

// FindReservation retrieves a reservation token by id
func (s *GormLedgerStore) FindReservation(ctx context.Context, reservationID string) (*ledger.Reservation, error) {
	var model ReservationModel
	result := s.db.WithContext(ctx).Where("id = ?", reservationID).First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, &ledger.ErrReservationNotFound{ID: reservationID}
		}
		return nil, fmt.Errorf("failed to find reservation: %w", result.Error)
	}

	var materials map[string]int
	if err := json.Unmarshal([]byte(model.Materials), &materials); err != nil {
		return nil, fmt.Errorf("failed to unmarshal materials: %w", err)
	}

	ownerID, err := shared.NewOwnerID(model.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id in reservation %s: %w", reservationID, err)
	}
	return ledger.NewReservation(model.ID, ownerID, materials, model.CreatedAt), nil
}

// Balance returns the owner's current quantity of kind
func (s *GormLedgerStore) Balance(ctx context.Context, ownerID shared.OwnerID, kind string) (int, error) {
	var model LedgerEntryModel
	result := s.db.WithContext(ctx).
		Where("owner_id = ? AND kind = ?", ownerID.Value(), kind).
		First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read balance: %w", result.Error)
	}
	return model.Quantity, nil
}

// Balances returns all non-zero balances for the owner
func (s *GormLedgerStore) Balances(ctx context.Context, ownerID shared.OwnerID) (map[string]int, error) {
	var models []LedgerEntryModel
	result := s.db.WithContext(ctx).
		Where("owner_id = ? AND quantity > 0", ownerID.Value()).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to read balances: %w", result.Error)
	}

	balances := make(map[string]int, len(models))
	for _, model := range models {
		balances[model.Kind] = model.Quantity
	}
	return balances, nil
}

func balanceInTx(tx *gorm.DB, ownerID int, kind string) (int, error) {
	var model LedgerEntryModel
	result := tx.Where("owner_id = ? AND kind = ?", ownerID, kind).First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read balance: %w", result.Error)
	}
	return model.Quantity, nil
}

// sortedKinds keeps multi-row updates in a stable order so two concurrent
// reservations touching the same kinds cannot deadlock
func sortedKinds(m map[string]int) []string {
	kinds := make([]string, 0, len(m))
	for kind := range m {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
