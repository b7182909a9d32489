package config

import (
	"errors"
	"fmt"
)

// Errors.
var (
	ErrIncompleteCall  = errors.New("could not register config option: all fields, except for the validationRegex and default value are mandatory")
	ErrInvalidJSON     = errors.New("json string invalid")
	ErrUnknownOption   = errors.New("unknown option")
	ErrUnsupportedType = errors.New("type not supported")
)

// InvalidOptionError describes an error encountered while
// registering a new option.
type InvalidOptionError struct {
	Msg string
	Err error
}

func (ioe *InvalidOptionError) Error() string {
	if ioe.Err != nil {
		return fmt.Sprintf("failed to register option: %s: %s", ioe.Msg, ioe.Err)
	}
	return fmt.Sprintf("failed to register option: %s", ioe.Msg)
}

// Unwrap returns the underlying error.
func (ioe *InvalidOptionError) Unwrap() error {
	return ioe.Err
}

// InvalidValueError is returned when a value does not fit its option.
type InvalidValueError struct {
	Key   string
	Value interface{}
	Msg   string
}

func newInvalidValueError(key string, value interface{}, msg string) *InvalidValueError {
	return &InvalidValueError{
		Key:   key,
		Value: value,
		Msg:   msg,
	}
}

func (ive *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %v for %s: %s", ive.Value, ive.Key, ive.Msg)
}
