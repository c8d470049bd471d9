package fsio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"
)

// Permissions for created files and directories.
const (
	DefaultFilePerm = 0600
	DefaultDirPerm  = 0750
)

// ErrIO matches every *IOError.
var ErrIO = errors.New("i/o failure")

// IOError records a failed file operation.
type IOError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

func ioErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// WriteAtomic replaces path with the bytes produced by fn.
//
// The content goes to a temporary file in the same directory which is
// flushed, fsynced and renamed over path, so readers see either the old or
// the new file in full. It returns the number of bytes written.
func WriteAtomic(path string, fn func(w io.Writer) error) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
		return 0, ioErr("mkdir", dir, err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+ulid.Make().String()+".tmp")
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, DefaultFilePerm)
	if err != nil {
		return 0, ioErr("create", tmp, err)
	}
	committed := false
	defer func() {
		if !committed {
			f.Close()
			os.Remove(tmp)
		}
	}()

	bw := bufio.NewWriter(f)
	cw := &countingWriter{w: bw}
	if err := fn(cw); err != nil {
		var ioe *IOError
		if errors.As(err, &ioe) {
			return 0, err
		}
		if cw.err != nil {
			return 0, ioErr("write", tmp, err)
		}
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		return 0, ioErr("write", tmp, err)
	}
	if err := f.Sync(); err != nil {
		return 0, ioErr("sync", tmp, err)
	}
	if err := f.Close(); err != nil {
		return 0, ioErr("close", tmp, err)
	}
	committed = true
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return 0, ioErr("rename", path, err)
	}

	syncDir(dir)
	return cw.n, nil
}

// OpenAppend opens path for appending, creating it when absent, and returns
// the handle together with the current file size.
func OpenAppend(path string) (*os.File, int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
		return nil, 0, ioErr("mkdir", dir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, DefaultFilePerm)
	if err != nil {
		return nil, 0, ioErr("open", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, ioErr("stat", path, err)
	}
	return f, st.Size(), nil
}

// Open opens path for reading. A missing file yields (nil, nil).
func Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, ioErr("open", path, err)
	}
	return f, nil
}

// Size returns the size of path and whether it exists.
func Size(path string) (int64, bool, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, ioErr("stat", path, err)
	}
	if st.IsDir() {
		return 0, false, ioErr("stat", path, errors.New("is a directory"))
	}
	return st.Size(), true, nil
}

// Remove deletes path. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ioErr("remove", path, err)
	}
	return nil
}

// Truncate cuts path down to size bytes and syncs it.
func Truncate(path string, size int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY, DefaultFilePerm)
	if err != nil {
		return ioErr("open", path, err)
	}
	defer f.Close()

	if err := f.Truncate(size); err != nil {
		return ioErr("truncate", path, err)
	}
	if err := f.Sync(); err != nil {
		return ioErr("sync", path, err)
	}
	return nil
}

// Wrap turns err into an *IOError for op on path unless it already is one.
func Wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ioe *IOError
	if errors.As(err, &ioe) {
		return err
	}
	return ioErr(op, path, err)
}

// syncDir makes a rename durable. Some platforms cannot fsync directories,
// so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	d.Close()
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	if err != nil && c.err == nil {
		c.err = err
	}
	return n, err
}
