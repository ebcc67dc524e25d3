package variable

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateID      = errors.New("variable id already in use")
	ErrVariableNotFound = errors.New("variable not found")
)

// DuplicateIDError reports a CreateVariable call whose id is already taken.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("Variable id, %q, is already in use.", e.ID)
}

func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrVariableNotFound, id)
}
