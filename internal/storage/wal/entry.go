package wal

import (
	"errors"
	"fmt"
)

// Errors for journal operations.
var (
	ErrCorruptRecord = errors.New("wal: corrupt record")
	ErrTruncatedTail = errors.New("wal: truncated record at end of journal")
	ErrInvalidOp     = errors.New("wal: invalid record op")
)

// Op tags a journal record.
type Op uint8

const (
	OpUnspecified Op = iota
	OpPut
	OpRemove
)

// String returns the lower-case op name.
func (o Op) String() string {
	switch o {
	case OpPut:
		return "put"
	case OpRemove:
		return "remove"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Valid reports whether o is a known record op.
func (o Op) Valid() bool {
	return o == OpPut || o == OpRemove
}

// Record is one journaled mutation. Value is meaningful only for OpPut.
type Record[K, V any] struct {
	Op    Op
	Key   K
	Value V
}

// Put returns a PUT record.
func Put[K, V any](key K, value V) Record[K, V] {
	return Record[K, V]{Op: OpPut, Key: key, Value: value}
}

// Remove returns a REMOVE record (a tombstone).
func Remove[K, V any](key K) Record[K, V] {
	return Record[K, V]{Op: OpRemove, Key: key}
}
