package status

import "errors"

var (
	ErrValidation            = errors.New("request: invalid input")
	ErrNotFound              = errors.New("record: not found")
	ErrForbidden             = errors.New("auth: not permitted for this resource")
	ErrInvalidTransition     = errors.New("booking: invalid status transition")
	ErrInsufficientInventory = errors.New("ticket: insufficient remaining quantity")
	ErrSlotsExhausted        = errors.New("ticket: advertisement slots exhausted")
	ErrDeparturePassed       = errors.New("booking: departure already passed")
	ErrConflict              = errors.New("store: lost concurrent update")
)
