package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_customers_owner_contact,priority:1"`
	FirstName string    `gorm:"size:50;not null"`
	LastName  string    `gorm:"size:50;not null"`
	Contact   string    `gorm:"size:20;not null;uniqueIndex:idx_customers_owner_contact,priority:2"`
	Email     *string   `gorm:"size:254"`
	Address   *string
	IsActive  bool `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Customer) TableName() string { return "customers" }

func (c *Customer) BeforeCreate(*gorm.DB) error {
	newID(&c.ID)
	return nil
}

func (c Customer) FullName() string { return c.FirstName + " " + c.LastName }
