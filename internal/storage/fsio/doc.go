// Package fsio holds the file primitives used by the snapshot and journal
// layers: atomic whole-file replacement, append handles, stat, removal and
// truncation.
//
// Every failure is returned as an *IOError, which matches ErrIO under
// errors.Is. A missing file is never an error for Size or Remove.
package fsio
