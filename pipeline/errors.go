package pipeline

import (
	apperrors "github.com/kbukum/httppipe/errors"
)

// DecodeError reports a response body that could not be interpreted as its
// declared or inferred content type.
type DecodeError struct {
	Message  string
	Response *Response
	// Err is the parse failure. For XML bodies it is the XML error even when
	// the JSON fallback also failed.
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DecodeError) Unwrap() error { return e.Err }

// As converts the error to an *errors.AppError with code DECODE_ERROR.
func (e *DecodeError) As(target any) bool {
	t, ok := target.(**apperrors.AppError)
	if !ok {
		return false
	}
	appErr := apperrors.Decode(e.Message, e.Err)
	if e.Response != nil {
		appErr.HTTPStatus = e.Response.StatusCode
		appErr.WithDetail("content_type", e.Response.ContentType())
	}
	*t = appErr
	return true
}
