package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityType uint8

const (
	ActivityComment ActivityType = iota
	ActivityStatusChanged
	ActivityStageChanged
	ActivityTaskCreated
	ActivitySystem
)

var activityTypeNames = []string{"comment", "status_changed", "stage_changed", "task_created", "system"}

func ParseActivityType(s string) (ActivityType, error) {
	i, err := lookupName("activity type", activityTypeNames, s)
	return ActivityType(i), err
}

func (t ActivityType) String() string { return nameOf(activityTypeNames, int(t)) }

func (t ActivityType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ActivityType) UnmarshalText(b []byte) error {
	v, err := ParseActivityType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t ActivityType) Value() (driver.Value, error) { return t.String(), nil }

func (t *ActivityType) Scan(value interface{}) error {
	s, err := scanName("activity type", value)
	if err != nil {
		return err
	}
	return t.UnmarshalText([]byte(s))
}

// Activity is an append-only audit record attached to a deal. Rows are never
// updated or deleted, so there is no UpdatedAt.
type Activity struct {
	// Seq is the insertion order and breaks ties between equal CreatedAt
	// values. ID is the public identifier.
	Seq       int64                  `gorm:"primaryKey;autoIncrement" json:"-"`
	ID        uuid.UUID              `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	DealID    uuid.UUID              `gorm:"type:uuid;index;not null" json:"deal_id"`
	AuthorID  *uuid.UUID             `gorm:"type:uuid" json:"author_id"` // nil for system events
	Type      ActivityType           `gorm:"type:varchar(32);not null" json:"type"`
	Payload   map[string]interface{} `gorm:"type:jsonb;serializer:json" json:"payload"`
	CreatedAt time.Time              `gorm:"index" json:"created_at"`

	Deal *Deal `gorm:"foreignKey:DealID" json:"-"`
}

func (Activity) TableName() string {
	return "activities"
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
