package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JonathanM-A/costmate/internal/model"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, owner, id uuid.UUID) (*model.Customer, error)
	FindByIDTx(tx *gorm.DB, owner, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, owner uuid.UUID, search string, page, limit int) ([]model.Customer, int64, error)
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, owner, id uuid.UUID) (*model.Customer, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), owner, id)
}

func (r *customerRepo) FindByIDTx(tx *gorm.DB, owner, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	if err := tx.Where("owner_id = ? AND id = ? AND is_active = ?", owner, id, true).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) List(ctx context.Context, owner uuid.UUID, search string, page, limit int) ([]model.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Customer{}).Where("owner_id = ? AND is_active = ?", owner, true)
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("(LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR contact LIKE ?)", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []model.Customer
	err := paginate(q, page, limit).Order("last_name ASC, first_name ASC").Find(&customers).Error
	return customers, total, err
}
