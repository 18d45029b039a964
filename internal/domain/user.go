package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is owned by the account subsystem; the learning core only ever sees the id.
type User struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	Email string `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Name  string `gorm:"column:name" json:"name"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }
