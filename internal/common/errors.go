package common

import "errors"

// AppError is an error that knows how it should be rendered over HTTP.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetails sets the envelope's details field.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

func asAppError(err error, target **AppError) bool {
	return err != nil && errors.As(err, target)
}
