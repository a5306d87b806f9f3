// Package model holds the request payloads of the RPC endpoints.
//
// Mandatory attributes are pointers (or slices) tagged `validate:"required"`
// so that a zero value sent by the client is told apart from a missing key.
package model

import (
	"fmt"

	"github.com/deppfellow/webbrayns-backend/internal/errs"
	"github.com/deppfellow/webbrayns-backend/internal/validation"
)

// Empty is the payload of endpoints that take no input.
type Empty struct{}

func (Empty) Validate() error { return nil }

// MaxGID is the largest GID the connectome store can hold.
const MaxGID = 1<<31 - 1

// GIDs converts client GIDs for the connectome store. A GID it cannot hold
// is an unexpected error, not a validation failure.
func GIDs(values []int64) ([]uint32, error) {
	gids := make([]uint32, len(values))
	for i, v := range values {
		if v < 1 || v > MaxGID {
			return nil, errs.Unexpected(fmt.Errorf("GID %d is out of range [1, %d]", v, MaxGID))
		}
		gids[i] = uint32(v)
	}
	return gids, nil
}

func validateStruct(v any) error {
	return validation.ToRPCError(validation.Struct(v))
}
