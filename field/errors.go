package field

import (
	"errors"
	"fmt"
)

var (
	ErrMissingSourceBlock    = errors.New("field has no source block")
	ErrUnknownVariable       = errors.New("variable id not in variable map")
	ErrTypeMismatch          = errors.New("variable type not accepted by field")
	ErrDefaultTypeNotAllowed = errors.New("default type not among variable types")
	ErrRejected              = errors.New("value rejected by validator")
)

// MissingSourceBlockError is returned when a field is asked to resolve an id
// before it is attached to a block. It signals a call-ordering bug.
type MissingSourceBlockError struct {
	ID string
}

func (e *MissingSourceBlockError) Error() string {
	return fmt.Sprintf("Variable with the id '%s' could not be found because sourceBlock_ is undefined.", e.ID)
}

func (e *MissingSourceBlockError) Is(target error) bool {
	return target == ErrMissingSourceBlock
}

// UnknownVariableError is returned when an attached field is given an id its
// workspace does not know.
type UnknownVariableError struct {
	ID string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("Variable with the id '%s' could not be found in the VariableMap.", e.ID)
}

func (e *UnknownVariableError) Is(target error) bool {
	return target == ErrUnknownVariable
}

// TypeMismatchError is returned when the variable exists but its type is not
// one the field accepts.
type TypeMismatchError struct {
	ID   string
	Type string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("Variable with the id '%s' has type '%s', which this field does not accept.", e.ID, e.Type)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}
