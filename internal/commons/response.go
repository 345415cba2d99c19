package commons

// Response is the envelope every public operation returns. Retryable is
// only meaningful when Success is false: it tells the caller whether
// re-presenting the same request can succeed (transient store conflict)
// or the failure is terminal until the input changes.
type Response[T any] struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Data      *T       `json:"data,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	Retryable bool     `json:"retryable,omitempty"`
	Warning   string   `json:"warning,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    &data,
	}
}

// DegradedResponse reports an operation whose money movement succeeded
// while a non-critical follow-up (lookup, notification, link generation)
// failed. Callers must treat it as success.
func DegradedResponse[T any](message string, data T, warning string) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    &data,
		Warning: warning,
	}
}

func ErrorResponse[T any](message string, errors ...string) Response[T] {
	return Response[T]{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}

// RetryableErrorResponse marks a transient failure the caller should
// retry as a whole operation.
func RetryableErrorResponse[T any](message string, errors ...string) Response[T] {
	return Response[T]{
		Success:   false,
		Message:   message,
		Errors:    errors,
		Retryable: true,
	}
}
