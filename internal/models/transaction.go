package models

import "github.com/google/uuid"

// Transaction statuses. PENDING is the only non-terminal state; rows in a
// terminal state must not be mutated again.
const (
	TxStatusPending = "PENDING"
	TxStatusSuccess = "SUCCESS"
	TxStatusFailed  = "FAILED"
)

// TerminalTxStatus reports whether status is a terminal payment state.
func TerminalTxStatus(status string) bool {
	return status == TxStatusSuccess || status == TxStatusFailed
}

// Transaction records a payment attempt for a channel purchase.
type Transaction struct {
	BaseModel
	TransactionID         string     `gorm:"index" json:"transaction_id"`
	MerchantTransactionID string     `gorm:"uniqueIndex" json:"merchant_transaction_id"`
	Amount                int64      `json:"amount"`
	Currency              string     `json:"currency"`
	Status                string     `gorm:"index" json:"status"`
	PaymentMethod         string     `json:"payment_method"`
	UserID                uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	User                  *User      `json:"user,omitempty"`
	ChannelID             *uuid.UUID `gorm:"type:uuid;index" json:"channel_id,omitempty"`
	ProviderResponse      []byte     `gorm:"type:jsonb" json:"provider_response,omitempty"`
}
