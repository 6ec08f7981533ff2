package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JonathanM-A/costmate/internal/model"
)

type SupplierRepository interface {
	Create(ctx context.Context, s *model.Supplier) error
	FindByID(ctx context.Context, owner, id uuid.UUID) (*model.Supplier, error)
	CountOwnedTx(tx *gorm.DB, owner uuid.UUID, ids []uuid.UUID) (int64, error)
	List(ctx context.Context, owner uuid.UUID, search string, page, limit int) ([]model.Supplier, int64, error)
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) Create(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *supplierRepo) FindByID(ctx context.Context, owner, id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	if err := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", owner, id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *supplierRepo) CountOwnedTx(tx *gorm.DB, owner uuid.UUID, ids []uuid.UUID) (int64, error) {
	var n int64
	if len(ids) == 0 {
		return 0, nil
	}
	err := tx.Model(&model.Supplier{}).
		Where("owner_id = ? AND id IN ? AND is_active = ?", owner, ids, true).
		Count(&n).Error
	return n, err
}

func (r *supplierRepo) List(ctx context.Context, owner uuid.UUID, search string, page, limit int) ([]model.Supplier, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Supplier{}).Where("owner_id = ? AND is_active = ?", owner, true)
	if search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var suppliers []model.Supplier
	err := paginate(q, page, limit).Order("name ASC").Find(&suppliers).Error
	return suppliers, total, err
}
