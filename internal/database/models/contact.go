package models

import "github.com/google/uuid"

type Contact struct {
	Base
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`
	OwnerID        uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	Name           string    `gorm:"not null" json:"name"`

	// Email and phone are stored age-encrypted; the plaintext fields are
	// filled in by the contact service after load.
	EmailEncrypted string `gorm:"column:email_encrypted" json:"-"`
	PhoneEncrypted string `gorm:"column:phone_encrypted" json:"-"`
	Email          string `gorm:"-" json:"email,omitempty"`
	Phone          string `gorm:"-" json:"phone,omitempty"`

	// Relationships
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Deals        []Deal        `gorm:"foreignKey:ContactID" json:"-"`
}

func (Contact) TableName() string {
	return "contacts"
}
