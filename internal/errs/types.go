package errs

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

// ParseError is bad user input. The message is always safe to echo back.
type ParseError struct {
	ErrorMessage
}

type CategoryNotFoundError struct {
	ErrorMessage
}

// MissingRateError is an internal inconsistency: a resolved rate carries
// no factor for the requested currency.
type MissingRateError struct {
	ErrorMessage
}

// FetchError is a remote rate provider failure (unreachable, non-success
// result, or malformed rates).
type FetchError struct {
	ErrorMessage
}

type NotFoundError struct {
	ErrorMessage
}

type AlreadyExistsError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

func NewParseError(message string) *ParseError {
	return &ParseError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewCategoryNotFoundError(message string) *CategoryNotFoundError {
	return &CategoryNotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewMissingRateError(message string) *MissingRateError {
	return &MissingRateError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewFetchError(message string) *FetchError {
	return &FetchError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewAlreadyExistsError(message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}
