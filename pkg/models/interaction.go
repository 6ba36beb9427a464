package models

import "time"

// InteractionType enumerates the event kinds the matrix builder understands.
// Anything else in the source data is treated as corruption, not as a new
// signal to be guessed at.
type InteractionType string

const (
	InteractionView      InteractionType = "view"
	InteractionClick     InteractionType = "click"
	InteractionAddToCart InteractionType = "add_to_cart"
	InteractionPurchase  InteractionType = "purchase"
)

// Interaction is a single user-product event from the interaction log.
// Records are immutable once loaded; repeated events for the same
// (user, product) pair each contribute their own weight.
type Interaction struct {
	UserID          string          `json:"user_id"`
	ProductID       string          `json:"product_id"`
	InteractionType InteractionType `json:"interaction_type"`
	Timestamp       time.Time       `json:"timestamp"`
	SessionID       string          `json:"session_id"`
}
