package workspace

import "errors"

// Sentinel errors for workspace and block operations.
var (
	ErrDisposed         = errors.New("workspace is disposed")
	ErrBlockDisposed    = errors.New("block is disposed")
	ErrUnknownBlockType = errors.New("unknown block type")
	ErrBlockTypeExists  = errors.New("block type already defined")
	ErrEmptyBlockType   = errors.New("block type is empty")
	ErrDuplicateBlockID = errors.New("block id already in use")
	ErrDuplicateField   = errors.New("field name already used on block")
	ErrUnknownFieldKind = errors.New("unknown field kind")
	ErrFieldKindExists  = errors.New("field kind already registered")
	ErrEmptyFieldKind   = errors.New("field kind is empty")
	ErrNilField         = errors.New("field is nil")
	ErrFieldAttached    = errors.New("field belongs to another block")
)
