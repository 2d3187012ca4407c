package client

import (
	"fmt"

	"github.com/pkg/errors"
)

// ClientDataError is returned for 4xx responses, the message is the
// response body read as plain text
type ClientDataError struct {
	StatusCode int
	Message    string
}

func (e *ClientDataError) Error() string {
	return fmt.Sprintf("client data error (status code: %d): %s", e.StatusCode, e.Message)
}

// ServiceError is returned for 5xx responses, the message is the
// response body read as plain text
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error (status code: %d): %s", e.StatusCode, e.Message)
}

// TransportError is returned when no usable response was obtained
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UnexpectedStatusError carries any status outside of the success,
// 4xx and 5xx ranges unmodified
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d; %s", e.StatusCode, e.Body)
}

func IsClientData(err error) bool {
	var e *ClientDataError
	return errors.As(err, &e)
}

func IsService(err error) bool {
	var e *ServiceError
	return errors.As(err, &e)
}

func IsTransport(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// StatusCode returns the status code carried by err or zero if no
// response was obtained
func StatusCode(err error) int {
	var clientDataErr *ClientDataError
	var serviceErr *ServiceError
	var unexpectedErr *UnexpectedStatusError

	switch {
	default:
		return 0
	case errors.As(err, &clientDataErr):
		return clientDataErr.StatusCode
	case errors.As(err, &serviceErr):
		return serviceErr.StatusCode
	case errors.As(err, &unexpectedErr):
		return unexpectedErr.StatusCode
	}
}

// Message returns the message extracted from the response body
func Message(err error) string {
	var clientDataErr *ClientDataError
	var serviceErr *ServiceError
	var unexpectedErr *UnexpectedStatusError

	switch {
	default:
		return ""
	case errors.As(err, &clientDataErr):
		return clientDataErr.Message
	case errors.As(err, &serviceErr):
		return serviceErr.Message
	case errors.As(err, &unexpectedErr):
		return unexpectedErr.Body
	}
}
