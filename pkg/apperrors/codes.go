package apperrors

// ErrorCode is a stable machine-readable error code exposed at the API boundary.
type ErrorCode string

const (
	// System / unknown
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Generic business logic
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"
	CodeRateLimited      ErrorCode = "RATE_LIMITED"

	// Authentication / authorization
	CodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	CodeForbidden           ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	CodeEmailNotVerified    ErrorCode = "EMAIL_NOT_VERIFIED"
	CodeInvalidToken        ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired        ErrorCode = "TOKEN_EXPIRED"
	CodeInvalidOtp          ErrorCode = "INVALID_OTP"
	CodeOtpExpired          ErrorCode = "OTP_EXPIRED"
	CodeOAuthEmailRequired  ErrorCode = "OAUTH_EMAIL_REQUIRED"
	CodeWeakPassword        ErrorCode = "WEAK_PASSWORD"
	CodePasswordCompromised ErrorCode = "PASSWORD_COMPROMISED"
)
