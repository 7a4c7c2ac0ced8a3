package models

import "github.com/google/uuid"

type Organization struct {
	Base
	Name string `gorm:"uniqueIndex;not null" json:"name"`

	// Relationships
	Memberships []Membership `gorm:"foreignKey:OrganizationID" json:"-"`
	Contacts    []Contact    `gorm:"foreignKey:OrganizationID" json:"-"`
	Deals       []Deal       `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (Organization) TableName() string {
	return "organizations"
}

// Membership joins a user to an organization with a role. A user may hold a
// different role in every organization they belong to.
type Membership struct {
	OrganizationID uuid.UUID `gorm:"type:uuid;primaryKey" json:"organization_id"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	Role           Role      `gorm:"type:varchar(16);not null" json:"role"`

	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         *User         `gorm:"foreignKey:UserID" json:"-"`
}

func (Membership) TableName() string {
	return "organization_members"
}
