package fulfillment

import (
	"errors"

	pkgerrors "github.com/breezepoint/breezepoint-backend/pkg/errors"
)

// ErrCandidateNotFound marks a selection that is no longer in the candidate set.
var ErrCandidateNotFound = errors.New("fulfillment candidate not found")

func candidateNotFound(supplierID string) error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrCandidateNotFound, "supplier is no longer a fulfillment candidate for this order").
		WithDetails(map[string]any{"supplier_id": supplierID})
}
