package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/breezepoint/breezepoint-backend/pkg/enums"
)

// AccessTokenPayload is what a caller supplies when minting a token.
type AccessTokenPayload struct {
	UserID     uuid.UUID
	Role       enums.MemberRole
	SupplierID *uuid.UUID
	JTI        string
}

// AccessTokenClaims is the JWT body presented by clients. Supplier users
// carry the supplier they act for.
type AccessTokenClaims struct {
	UserID     uuid.UUID        `json:"user_id"`
	Role       enums.MemberRole `json:"role"`
	SupplierID *uuid.UUID       `json:"supplier_id,omitempty"`
	jwt.RegisteredClaims
}

// Validate is invoked by the jwt parser after the registered claims pass.
func (c AccessTokenClaims) Validate() error {
	if c.UserID == uuid.Nil {
		return errors.New("user_id claim is required")
	}
	if !c.Role.IsValid() {
		return fmt.Errorf("invalid member role %q", c.Role)
	}
	if c.Role.ScopedToSupplier() && (c.SupplierID == nil || *c.SupplierID == uuid.Nil) {
		return errors.New("supplier tokens require a supplier id")
	}
	return nil
}
