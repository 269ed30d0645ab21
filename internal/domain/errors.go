package domain

import "errors"

// Domain errors
var (
	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidPhone       = errors.New("phone must be 09 followed by 8 digits")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidName        = errors.New("name must be 1 to 8 characters")

	// Session errors
	ErrMissingToken = errors.New("missing session token")
	ErrInvalidToken = errors.New("invalid or expired session token")
	ErrForbidden    = errors.New("insufficient role")

	// Order errors
	ErrOrderNotFound          = errors.New("order not found")
	ErrEmptyOrder             = errors.New("order must contain at least one item")
	ErrInvalidQuantity        = errors.New("item quantity must be at least 1")
	ErrInvalidTotal           = errors.New("total must be a non-negative amount")
	ErrTotalPrecision         = errors.New("total must have at most two decimal places")
	ErrMissingShippingInfo    = errors.New("shipping info is incomplete")
	ErrInvalidOrderStatus     = errors.New("invalid order status")
	ErrInvalidTransition      = errors.New("illegal order status transition")
	ErrTrackingNumberRequired = errors.New("tracking number is required to ship an order")
	ErrStatusConflict         = errors.New("order status changed concurrently")

	// Product errors
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrInvalidSpreadsheet = errors.New("invalid spreadsheet")
)

// Kind classifies an error into the response category it maps to
type Kind int

const (
	KindInfrastructure Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "infrastructure"
	}
}

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrInvalidEmail, KindValidation},
	{ErrInvalidPhone, KindValidation},
	{ErrPasswordTooShort, KindValidation},
	{ErrInvalidName, KindValidation},
	{ErrEmptyOrder, KindValidation},
	{ErrInvalidQuantity, KindValidation},
	{ErrInvalidTotal, KindValidation},
	{ErrTotalPrecision, KindValidation},
	{ErrMissingShippingInfo, KindValidation},
	{ErrInvalidOrderStatus, KindValidation},
	{ErrInvalidProduct, KindValidation},
	{ErrInvalidSpreadsheet, KindValidation},

	{ErrInvalidCredentials, KindAuthentication},
	{ErrMissingToken, KindAuthentication},
	{ErrInvalidToken, KindAuthentication},

	{ErrForbidden, KindAuthorization},

	{ErrUserNotFound, KindNotFound},
	{ErrOrderNotFound, KindNotFound},
	{ErrProductNotFound, KindNotFound},

	{ErrEmailTaken, KindConflict},
	{ErrInvalidTransition, KindConflict},
	{ErrTrackingNumberRequired, KindConflict},
	{ErrStatusConflict, KindConflict},
}

// KindOf returns the category of err; unknown errors are infrastructure failures
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInfrastructure
}

// IsRetryable reports whether a caller may safely retry the failed operation
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindInfrastructure, KindConflict:
		return true
	}
	return false
}
