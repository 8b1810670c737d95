package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized  ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden     ErrorType = "FORBIDDEN"
	ErrorTypeConflict      ErrorType = "CONFLICT"
	ErrorTypePolicyBlocked ErrorType = "POLICY_BLOCKED"
	ErrorTypeInternal      ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal      ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeMissingFields    ErrorCode = "MISSING_FIELDS"
	ErrCodeInvalidCategory  ErrorCode = "INVALID_CATEGORY"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"

	ErrCodeNotFoundInCatalog   ErrorCode = "NOT_FOUND_IN_CATALOG"
	ErrCodeStorageMediaBlocked ErrorCode = "STORAGE_MEDIA_BLOCKED"
	ErrCodeCatalogUnavailable  ErrorCode = "CATALOG_UNAVAILABLE"

	ErrCodeListingNotFound      ErrorCode = "LISTING_NOT_FOUND"
	ErrCodeDuplicateSerial      ErrorCode = "DUPLICATE_SERIAL"
	ErrCodeListingNotRemovable  ErrorCode = "LISTING_NOT_REMOVABLE"
	ErrCodeListingUnavailable   ErrorCode = "LISTING_UNAVAILABLE"
	ErrCodeNotListingOwner      ErrorCode = "NOT_LISTING_OWNER"
	ErrCodeDuplicateDeptClaim   ErrorCode = "DUPLICATE_DEPARTMENT_CLAIM"
	ErrCodeClaimNotFound        ErrorCode = "CLAIM_NOT_FOUND"
	ErrCodeInvalidTransition    ErrorCode = "INVALID_CLAIM_TRANSITION"
	ErrCodeNotSecurityTeam      ErrorCode = "NOT_SECURITY_TEAM"
	ErrCodeNotClaimant          ErrorCode = "NOT_CLAIMANT"
	ErrCodeListingNotShippable  ErrorCode = "LISTING_NOT_SHIPPABLE"
	ErrCodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	ErrCodeInvalidCredentials   ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive         ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken         ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired         ErrorCode = "TOKEN_EXPIRED"
	ErrCodeMissingAuthorization ErrorCode = "MISSING_AUTHORIZATION"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
		if blocked, ok := e.Details.(PolicyDetails); ok {
			return blocked.Reason
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches two AppErrors by type and code so that copies of a sentinel
// (for example one carrying a cause) still satisfy errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithCause returns a copy of e carrying cause. Sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// PolicyDetails is attached to POLICY_BLOCKED errors.
type PolicyDetails struct {
	Blocked bool     `json:"blocked"`
	Reason  string   `json:"reason"`
	Media   []string `json:"media,omitempty"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewPolicyBlockedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypePolicyBlocked,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewExternalError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrMissingFields      = NewValidationError("Missing required fields", ErrCodeMissingFields)
	ErrNotFoundInCatalog  = NewNotFoundError("Serial number not found in hardware tracking system", ErrCodeNotFoundInCatalog)
	ErrStorageMedia       = NewPolicyBlockedError("Hardware contains storage media", ErrCodeStorageMediaBlocked)
	ErrCatalogUnavailable = NewExternalError("Hardware tracking system is unavailable", ErrCodeCatalogUnavailable)

	ErrListingNotFound      = NewNotFoundError("Listing not found", ErrCodeListingNotFound)
	ErrDuplicateSerial      = NewConflictError("Hardware with this serial number is already listed", ErrCodeDuplicateSerial)
	ErrListingNotRemovable  = NewConflictError("Listing can only be removed while it is available", ErrCodeListingNotRemovable)
	ErrListingUnavailable   = NewConflictError("Listing is not available for claiming", ErrCodeListingUnavailable)
	ErrNotListingOwner      = NewForbiddenError("Only the owning department may perform this action", ErrCodeNotListingOwner)
	ErrDuplicateDeptClaim   = NewConflictError("Your department already has a pending claim for this hardware", ErrCodeDuplicateDeptClaim)
	ErrClaimNotFound        = NewNotFoundError("Claim not found", ErrCodeClaimNotFound)
	ErrInvalidTransition    = NewConflictError("Claim cannot make this transition in its current status", ErrCodeInvalidTransition)
	ErrNotSecurityTeam      = NewForbiddenError("Security team approval required", ErrCodeNotSecurityTeam)
	ErrNotClaimant          = NewForbiddenError("Only the requesting department may withdraw this claim", ErrCodeNotClaimant)
	ErrListingNotShippable  = NewConflictError("Listing must be approved before it can be shipped", ErrCodeListingNotShippable)
	ErrUserNotFound         = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrInvalidCredentials   = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive         = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken         = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired         = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrMissingAuthorization = NewUnauthorizedError("Missing authorization token", ErrCodeMissingAuthorization)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
