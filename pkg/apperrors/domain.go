package apperrors

import (
	"net/http"
)

/*
Factories and predefined variables for common domain errors.
Static errors are package variables so services can compare with Is();
factories exist where an underlying cause has to be carried.
*/

// ErrNotFound converts a repository miss (e.g. gorm.ErrRecordNotFound)
// into a 404 AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// --- Session & credential lifecycle ---

// ErrInvalidCredentials covers both "unknown email" and "wrong password".
// One error for both so responses cannot be used for user enumeration.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrEmailNotVerified = New(
	CodeEmailNotVerified,
	"auth",
	"Email address is not verified",
	http.StatusForbidden,
)

// ErrInvalidToken covers password-reset and email-verification tokens that
// do not resolve to a stored hash.
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or unknown token",
	http.StatusUnauthorized,
)

var ErrTokenExpired = New(
	CodeTokenExpired,
	"auth",
	"Token has expired",
	http.StatusUnauthorized,
)

// ErrInvalidOtp covers both "wrong code" and "no active code".
var ErrInvalidOtp = New(
	CodeInvalidOtp,
	"auth",
	"Invalid one-time code",
	http.StatusUnauthorized,
)

var ErrOtpExpired = New(
	CodeOtpExpired,
	"auth",
	"One-time code has expired",
	http.StatusUnauthorized,
)

var ErrOAuthEmailRequired = New(
	CodeOAuthEmailRequired,
	"auth",
	"OAuth provider did not supply an email address",
	http.StatusBadRequest,
)

var ErrWeakPassword = New(
	CodeWeakPassword,
	"auth",
	"Password does not meet the password policy",
	http.StatusBadRequest,
)

var ErrPasswordCompromised = New(
	CodePasswordCompromised,
	"auth",
	"Password appears in a known data breach",
	http.StatusBadRequest,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"An account with this email already exists",
	http.StatusConflict,
)

// --- Users / sessions / organizations ---

var ErrUserNotFound = New(
	CodeNotFound,
	"user",
	"User not found",
	http.StatusNotFound,
)

var ErrSessionNotFound = New(
	CodeNotFound,
	"session",
	"Session not found",
	http.StatusNotFound,
)

var ErrOrganizationNotFound = New(
	CodeNotFound,
	"organization",
	"Organization not found",
	http.StatusNotFound,
)

var ErrNotAMember = New(
	CodeForbidden,
	"organization",
	"Not a member of this organization",
	http.StatusForbidden,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrAlreadyMember = New(
	CodeConflict,
	"organization",
	"User is already a member of this organization",
	http.StatusConflict,
)
