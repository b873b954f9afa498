package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Validation errors are caller-correctable and leave state untouched.
var (
	ErrEmptyServiceTypes         = errors.New("at least one service type is required")
	ErrMissingPickupAddress      = errors.New("pickup address is required when pickup is selected")
	ErrInvalidCatalogCombination = errors.New("vehicle type, brand and model combination is not in the catalog")
	ErrInvalidVehicleType        = errors.New("invalid vehicle type")
	ErrUnknownServiceType        = errors.New("service type is not offered for this vehicle type")
	ErrDuplicateServiceType      = errors.New("service type selected more than once")
	ErrDuplicatePlate            = errors.New("vehicle number already exists")
	ErrDuplicateEmail            = errors.New("email already exists")
	ErrNegativeAmount            = errors.New("amount must not be negative")
	ErrEmptyPlate                = errors.New("vehicle number is required")
	ErrInvalidStatus             = errors.New("invalid status")
	ErrNothingToPay              = errors.New("no balance remaining on this ticket")
	ErrInvalidInput              = errors.New("invalid input")
)

// Not-found errors.
var (
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrVehicleNotOwned  = errors.New("vehicle not found for this customer")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrMechanicNotFound = errors.New("mechanic not found")
)

var (
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrStaleTicket means the ticket changed between read and write.
	// The caller should re-fetch before retrying.
	ErrStaleTicket = errors.New("ticket was modified concurrently")
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindIllegalTransition
	KindStorage
	KindConflict
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindIllegalTransition:
		return "illegal_transition"
	case KindStorage:
		return "storage_unavailable"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

var validationErrors = []error{
	ErrEmptyServiceTypes,
	ErrMissingPickupAddress,
	ErrInvalidCatalogCombination,
	ErrInvalidVehicleType,
	ErrUnknownServiceType,
	ErrDuplicateServiceType,
	ErrDuplicatePlate,
	ErrDuplicateEmail,
	ErrNegativeAmount,
	ErrEmptyPlate,
	ErrInvalidStatus,
	ErrNothingToPay,
	ErrInvalidInput,
}

var notFoundErrors = []error{
	ErrTicketNotFound,
	ErrVehicleNotOwned,
	ErrCustomerNotFound,
	ErrMechanicNotFound,
}

// StorageError carries the failing persistence operation. It matches
// ErrStorageUnavailable under errors.Is and unwraps to the driver error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorageUnavailable, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }

// Storage wraps a persistence failure. A nil err stays nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// KindOf classifies err into one of the error kinds surfaced to callers.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, ErrStorageUnavailable) {
		return KindStorage
	}
	if errors.Is(err, ErrIllegalTransition) {
		return KindIllegalTransition
	}
	if errors.Is(err, ErrStaleTicket) {
		return KindConflict
	}
	if errors.Is(err, ErrInvalidCredentials) {
		return KindUnauthorized
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return KindNotFound
		}
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return KindValidation
		}
	}
	return KindUnknown
}

// HTTPStatus maps an error to the status code the HTTP layer responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		if errors.Is(err, ErrDuplicatePlate) || errors.Is(err, ErrDuplicateEmail) {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindIllegalTransition, KindConflict:
		return http.StatusConflict
	case KindStorage:
		return http.StatusServiceUnavailable
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
