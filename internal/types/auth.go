package types

import "github.com/google/uuid"

// TokenInfo is the identity carried by a validated access token.
type TokenInfo struct {
	UserID uuid.UUID `json:"userId"`
	Role   string    `json:"role"`
	Valid  bool      `json:"valid"`
}
