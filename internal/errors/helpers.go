package errors

import "fmt"

// NewConfigError creates a configuration error
func NewConfigError(key, message string) *AppError {
	return New(ErrCodeInvalidConfig, message).
		WithContext("config_key", key)
}

// NewDatabaseError creates a database error with operation context. Database
// errors are never retryable from the engines' point of view: the enclosing
// sync operation must fail rather than risk a duplicate remote entity.
func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseQuery, fmt.Sprintf("database %s failed", operation)).
		WithContext("operation", operation)
}

// NewNotFoundError creates a not found error with resource context
func NewNotFoundError(resource, identifier string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithContext("resource", resource).
		WithContext("identifier", identifier)
}

// NewConflictError creates a conflict error with resource context
func NewConflictError(resource, identifier string) *AppError {
	return New(ErrCodeConflict, fmt.Sprintf("%s already exists", resource)).
		WithContext("resource", resource).
		WithContext("identifier", identifier)
}

// NewAPIError creates an API error for an external service call. The error
// is retryable when the status code points at a transient condition; the
// adapters retry those with backoff, the engines treat whatever survives the
// retry budget as a definitive per-item failure.
func NewAPIError(service, endpoint string, statusCode int, err error) *AppError {
	var code ErrorCode
	switch service {
	case "googlechat":
		code = ErrCodeChatAPI
	case "discourse":
		code = ErrCodeForumAPI
	default:
		code = ErrCodeInternalError
	}

	appErr := Wrap(err, code, fmt.Sprintf("%s API call failed", service)).
		WithContext("service", service).
		WithContext("endpoint", endpoint).
		WithContext("status_code", statusCode)

	if statusCode >= 500 || statusCode == 429 || statusCode == 408 {
		appErr.Retryable = true
	}
	return appErr
}

// NewTimeoutError creates a timeout error with context
func NewTimeoutError(operation string, duration string) *AppError {
	return New(ErrCodeTimeout, fmt.Sprintf("%s timed out after %s", operation, duration)).
		WithContext("operation", operation).
		WithContext("timeout", duration)
}
