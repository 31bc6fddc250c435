package services

import (
	"errors"
	"fmt"
)

// BillingError carries a stable code plus the message shown to the user.
type BillingError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *BillingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BillingError) Unwrap() error {
	return e.Err
}

// Is matches by code. An up-to-date customer is the benign case of an
// inverted period, so it also matches ErrInvalidPeriod.
func (e *BillingError) Is(target error) bool {
	t, ok := target.(*BillingError)
	if !ok {
		return false
	}
	if t.Code == e.Code {
		return true
	}
	return e.Code == codeAlreadyUpToDate && t.Code == codeInvalidPeriod
}

const (
	codeValidation       = "VALIDATION_ERROR"
	codeCustomerNotFound = "CUSTOMER_NOT_FOUND"
	codeInvalidPeriod    = "INVALID_PERIOD"
	codeAlreadyUpToDate  = "ALREADY_UP_TO_DATE"
	codeNoBillableItems  = "NO_BILLABLE_ITEMS"
	codeInProgress       = "BILLING_IN_PROGRESS"
	codeDuplicateBill    = "DUPLICATE_BILL"
	codeBillNotFound     = "BILL_NOT_FOUND"
	codeOverrideBilled   = "OVERRIDE_BILLED"
	codePersistence      = "PERSISTENCE_ERROR"
)

var (
	ErrValidation        = &BillingError{Code: codeValidation, Message: "Invalid request"}
	ErrCustomerNotFound  = &BillingError{Code: codeCustomerNotFound, Message: "Customer not found"}
	ErrInvalidPeriod     = &BillingError{Code: codeInvalidPeriod, Message: "Invalid date range: start date is after end date"}
	ErrAlreadyUpToDate   = &BillingError{Code: codeAlreadyUpToDate, Message: "Customer is already billed up to today"}
	ErrNoBillableItems   = &BillingError{Code: codeNoBillableItems, Message: "No billable items found for the given period"}
	ErrBillingInProgress = &BillingError{Code: codeInProgress, Message: "A bill is already being generated for this customer"}
	ErrDuplicateBill     = &BillingError{Code: codeDuplicateBill, Message: "A bill for this period already exists"}
	ErrBillNotFound      = &BillingError{Code: codeBillNotFound, Message: "Bill not found"}
	ErrOverrideBilled    = &BillingError{Code: codeOverrideBilled, Message: "This day is already billed and can no longer be changed"}
	ErrPersistence       = &BillingError{Code: codePersistence, Message: "Failed to save billing data"}
)

func newError(base *BillingError, message string, err error) *BillingError {
	if message == "" {
		message = base.Message
	}
	return &BillingError{Code: base.Code, Message: message, Err: err}
}

// IsValidation reports whether err should be surfaced as a client error.
func IsValidation(err error) bool {
	var be *BillingError
	return errors.As(err, &be) && (be.Code == codeValidation || be.Code == codeCustomerNotFound)
}
