package apperrors

import "net/http"

// Predefined errors for the storefront domains. Services return these;
// handlers never construct status codes by hand.

// --- Auth & account ---

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Incorrect password",
	http.StatusUnauthorized,
)

var ErrEmailNotFound = New(
	CodeNotFound,
	"auth",
	"Email not found",
	http.StatusNotFound,
)

var ErrAccountInactive = New(
	CodeAccountInactive,
	"auth",
	"Account is inactive",
	http.StatusForbidden,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"User already exists",
	http.StatusConflict,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

// ErrInvalidTempToken covers a structurally valid JWT that is not an MFA
// challenge token (wrong claims for the operation).
var ErrInvalidTempToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid temporary token",
	http.StatusUnauthorized,
)

// ErrInvalidMfaCode deliberately does not distinguish "never requested",
// "expired" and "mismatched": the caller learns only that the code is not
// acceptable.
var ErrInvalidMfaCode = New(
	CodeInvalidCode,
	"auth",
	"MFA code not requested, expired or invalid",
	http.StatusBadRequest,
)

var ErrMfaNotEnabled = New(
	CodeMfaNotEnabled,
	"auth",
	"MFA is not enabled for this user",
	http.StatusBadRequest,
)

var ErrInvalidSetupCode = New(
	CodeInvalidCode,
	"auth",
	"MFA setup not initiated, expired or invalid code",
	http.StatusBadRequest,
)

var ErrInvalidResetCode = New(
	CodeInvalidCode,
	"auth",
	"Verification code not requested, expired or invalid",
	http.StatusBadRequest,
)

var ErrWeakPassword = New(
	CodeWeakPassword,
	"validation",
	"Password must be at least 6 characters long",
	http.StatusBadRequest,
)

var ErrInvalidUserRole = New(
	CodeInvalidUserRole,
	"validation",
	"Invalid role specified",
	http.StatusBadRequest,
)

var ErrInvalidAge = New(
	CodeValidationFailed,
	"validation",
	"Age must be between 18 and 100",
	http.StatusBadRequest,
)

// --- Users ---

var ErrUserNotFound = New(
	CodeNotFound,
	"user",
	"User not found",
	http.StatusNotFound,
)

// --- Catalog ---

var ErrProductNotFound = New(
	CodeNotFound,
	"catalog",
	"Product not found",
	http.StatusNotFound,
)

// --- Orders ---

var ErrOrderNotFound = New(
	CodeNotFound,
	"order",
	"Order not found",
	http.StatusNotFound,
)

var ErrInsufficientStock = New(
	CodeInsufficientStock,
	"order",
	"Not enough stock for the requested quantity",
	http.StatusBadRequest,
)

var ErrInvalidOrderStatus = New(
	CodeInvalidStatus,
	"order",
	"Order status transition not allowed",
	http.StatusBadRequest,
)

// --- Reviews ---

var ErrNotVerifiedBuyer = New(
	CodeForbidden,
	"review",
	"Only verified buyers can post reviews",
	http.StatusForbidden,
)

var ErrDuplicateReview = New(
	CodeAlreadyExists,
	"review",
	"You have already reviewed this product",
	http.StatusConflict,
)

// --- External services ---

func EmailDispatchError(err error) *AppError {
	return Wrap(err, CodeExternalServiceError, "email", "Failed to send verification email", http.StatusInternalServerError)
}
