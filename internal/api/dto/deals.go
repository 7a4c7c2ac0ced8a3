package dto

import (
	"github.com/shopspring/decimal"
)

type CreateDealRequest struct {
	ContactID string          `json:"contact_id" validate:"required,uuid"`
	Title     string          `json:"title" validate:"required,max=255"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency" validate:"omitempty,currency"`
}

// UpdateDealRequest is a partial update. A missing or null field is left as
// is; "amount": 0 is a provided value.
type UpdateDealRequest struct {
	Status *string          `json:"status" validate:"omitempty,deal_status"`
	Stage  *string          `json:"stage" validate:"omitempty,deal_stage"`
	Amount *decimal.Decimal `json:"amount"`
}

type CreateActivityRequest struct {
	Type    string                 `json:"type" validate:"required"`
	Payload map[string]interface{} `json:"payload"`
}
