package data

import "errors"

var (
	ErrEmployeeNotFound     = errors.New(MessageNotFound)
	ErrEmployeeNameNotFound = errors.New(MessageNameNotFound)
	ErrEmployeeInvalid      = errors.New("employee invalid")
	ErrInvalidId            = errors.New(MessageInvalidId)
	ErrSimulated            = errors.New(MessageSomethingWrong)
)
