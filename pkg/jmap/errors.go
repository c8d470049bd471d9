package jmap

import (
	"errors"

	"github.com/yndnr/journalmap/internal/storage/fsio"
	"github.com/yndnr/journalmap/internal/storage/snapshot"
	"github.com/yndnr/journalmap/internal/storage/wal"
)

// IOError reports a failed file operation. It matches ErrIO.
type IOError = fsio.IOError

// FormatError reports an invalid snapshot file. It matches ErrFormat.
type FormatError = snapshot.FormatError

// Errors returned by Map operations. Compare with errors.Is.
var (
	ErrIO                 = fsio.ErrIO
	ErrFormat             = snapshot.ErrFormat
	ErrUnsupportedVersion = snapshot.ErrUnsupportedVersion
	ErrTruncatedSnapshot  = snapshot.ErrTruncatedSnapshot
	ErrTruncatedJournal   = wal.ErrTruncatedTail
	ErrCorruptRecord      = wal.ErrCorruptRecord

	ErrInvalidPaths = errors.New("jmap: snapshot and journal need distinct non-empty paths")
	ErrNilCodec     = errors.New("jmap: key and value codecs are required")
)
