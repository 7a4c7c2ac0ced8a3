package models

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	Base
	DealID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"deal_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `gorm:"index" json:"due_date,omitempty"`
	IsDone      bool       `gorm:"default:false" json:"is_done"`

	Deal *Deal `gorm:"foreignKey:DealID" json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}
