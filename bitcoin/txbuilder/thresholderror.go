// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"errors"
	"fmt"
)

// ThresholdError is the error type to describe multi-sig inputs short of signatures.
type ThresholdError struct {
	Need int
	Have int
}

// NewThresholdError is a constructor for ThresholdError.
func NewThresholdError(need, have int) *ThresholdError {
	return &ThresholdError{Need: need, Have: have}
}

// Error returns error description.
func (e *ThresholdError) Error() string {
	return fmt.Sprintf("%s: Need - %d, Have - %d", ErrNotEnoughSignatures, e.Need, e.Have)
}

// Is implements comparator method for [errors] package.
func (e *ThresholdError) Is(target error) bool {
	return errors.Is(ErrNotEnoughSignatures, target)
}
