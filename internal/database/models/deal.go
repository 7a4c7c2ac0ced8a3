package models

import (
	"database/sql/driver"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DealStatus is the outcome state of a deal, independent of its stage.
type DealStatus uint8

const (
	DealStatusNew DealStatus = iota
	DealStatusInProgress
	DealStatusWon
	DealStatusLost
)

var dealStatusNames = []string{"new", "in_progress", "won", "lost"}

// DealStatuses lists every status in reporting order.
func DealStatuses() []DealStatus {
	return []DealStatus{DealStatusNew, DealStatusInProgress, DealStatusWon, DealStatusLost}
}

func ParseDealStatus(s string) (DealStatus, error) {
	i, err := lookupName("deal status", dealStatusNames, s)
	return DealStatus(i), err
}

func (s DealStatus) String() string { return nameOf(dealStatusNames, int(s)) }

func (s DealStatus) Valid() bool { return int(s) < len(dealStatusNames) }

func (s DealStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *DealStatus) UnmarshalText(b []byte) error {
	v, err := ParseDealStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s DealStatus) Value() (driver.Value, error) { return s.String(), nil }

func (s *DealStatus) Scan(value interface{}) error {
	str, err := scanName("deal status", value)
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(str))
}

// DealStage is a deal's position in the fixed sales pipeline. Variants are
// declared in pipeline order, so the numeric value is the pipeline index.
type DealStage uint8

const (
	DealStageQualification DealStage = iota
	DealStageProposal
	DealStageNegotiation
	DealStageClosed
)

var dealStageNames = []string{"qualification", "proposal", "negotiation", "closed"}

// Pipeline returns the stages in pipeline order.
func Pipeline() []DealStage {
	return []DealStage{DealStageQualification, DealStageProposal, DealStageNegotiation, DealStageClosed}
}

func ParseDealStage(s string) (DealStage, error) {
	i, err := lookupName("deal stage", dealStageNames, s)
	return DealStage(i), err
}

func (s DealStage) String() string { return nameOf(dealStageNames, int(s)) }

func (s DealStage) Valid() bool { return int(s) < len(dealStageNames) }

// Index is the stage's position in the pipeline (qualification=0 .. closed=3).
func (s DealStage) Index() int { return int(s) }

// IsRollbackTo reports whether moving from s to next goes backwards in the pipeline.
func (s DealStage) IsRollbackTo(next DealStage) bool {
	return next.Index() < s.Index()
}

func (s DealStage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *DealStage) UnmarshalText(b []byte) error {
	v, err := ParseDealStage(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s DealStage) Value() (driver.Value, error) { return s.String(), nil }

func (s *DealStage) Scan(value interface{}) error {
	str, err := scanName("deal stage", value)
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(str))
}

// Deal amounts are stored as numeric(AmountPrecision, AmountScale).
const (
	AmountPrecision = 14
	AmountScale     = 2
)

// MaxAmount is the exclusive upper bound of a storable amount.
var MaxAmount = decimal.New(1, AmountPrecision-AmountScale)

type Deal struct {
	Base
	OrganizationID uuid.UUID       `gorm:"type:uuid;index;not null" json:"organization_id"`
	ContactID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"contact_id"`
	OwnerID        *uuid.UUID      `gorm:"type:uuid;index" json:"owner_id"`
	Title          string          `gorm:"not null" json:"title"`
	Amount         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency       string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status         DealStatus      `gorm:"type:varchar(16);not null;index" json:"status"`
	Stage          DealStage       `gorm:"type:varchar(16);not null;index" json:"stage"`

	// Relationships
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Contact      *Contact      `gorm:"foreignKey:ContactID" json:"-"`
	Activities   []Activity    `gorm:"foreignKey:DealID" json:"-"`
	Tasks        []Task        `gorm:"foreignKey:DealID" json:"-"`
}

func (Deal) TableName() string {
	return "deals"
}

// OwnedBy reports whether userID is the deal's current owner. A deal whose
// owner was removed is owned by nobody.
func (d *Deal) OwnedBy(userID uuid.UUID) bool {
	return d.OwnerID != nil && *d.OwnerID == userID
}
