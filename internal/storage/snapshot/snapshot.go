package snapshot

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"

	"github.com/yndnr/journalmap/internal/storage/fsio"
	"github.com/yndnr/journalmap/pkg/codec"
)

// headerSize is the byte length of the version and count fields.
const headerSize = 8

var (
	// ErrFormat matches every *FormatError.
	ErrFormat = errors.New("snapshot: format error")

	ErrUnsupportedVersion = errors.New("snapshot: unsupported format version")
	ErrCorruptHeader      = errors.New("snapshot: corrupt header")
	ErrTruncatedSnapshot  = errors.New("snapshot: fewer entries than declared")
	ErrTrailingData       = errors.New("snapshot: trailing data after last entry")
	ErrTooManyEntries     = errors.New("snapshot: entry count exceeds int32")
)

// FormatError reports a structurally invalid snapshot file.
type FormatError struct {
	Path   string
	Offset int64
	Err    error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("snapshot %s at offset %d: %v", e.Path, e.Offset, e.Err)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// Write replaces the snapshot at path with version and entries and returns
// the file size. Entries are written in map iteration order.
func Write[K comparable, V any](path string, version int32, entries map[K]V, keys codec.Codec[K], values codec.Codec[V]) (int64, error) {
	if len(entries) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d", ErrTooManyEntries, len(entries))
	}

	return fsio.WriteAtomic(path, func(w io.Writer) error {
		cw := codec.NewWriter(w)
		if err := cw.WriteInt32(version); err != nil {
			return err
		}
		if err := cw.WriteInt32(int32(len(entries))); err != nil {
			return err
		}
		for k, v := range entries {
			if err := keys.Encode(cw, k); err != nil {
				return fmt.Errorf("snapshot: encode key: %w", err)
			}
			if err := values.Encode(cw, v); err != nil {
				return fmt.Errorf("snapshot: encode value: %w", err)
			}
		}
		return nil
	})
}

// Read loads the snapshot at path.
//
// A missing file yields an empty map and version. A file whose version
// differs from version fails with ErrUnsupportedVersion; a file holding
// fewer entries than its header declares fails with ErrTruncatedSnapshot.
// Both are wrapped in a *FormatError. The returned version is the one
// stored in the file.
func Read[K comparable, V any](path string, version int32, keys codec.Codec[K], values codec.Codec[V]) (map[K]V, int32, error) {
	f, err := fsio.Open(path)
	if err != nil {
		return nil, 0, err
	}
	if f == nil {
		return make(map[K]V), version, nil
	}
	defer f.Close()

	r := codec.NewReader(f)
	fail := func(err error) error {
		if errors.Is(err, codec.ErrEndOfInput) || errors.Is(err, codec.ErrTruncated) {
			err = fmt.Errorf("%w: %v", ErrTruncatedSnapshot, err)
		} else if isOSError(err) {
			return fsio.Wrap("read", path, err)
		}
		return &FormatError{Path: path, Offset: r.Offset(), Err: err}
	}

	got, count, err := readHeader(r)
	if err != nil {
		return nil, 0, fail(err)
	}
	if got != version {
		return nil, 0, &FormatError{Path: path, Err: fmt.Errorf("%w: file has %d, want %d", ErrUnsupportedVersion, got, version)}
	}

	entries := make(map[K]V, min(int(count), 1<<16))
	for i := range int(count) {
		k, err := keys.Decode(r)
		if err != nil {
			return nil, 0, fail(fmt.Errorf("entry %d of %d: key: %w", i, count, err))
		}
		v, err := values.Decode(r)
		if err != nil {
			return nil, 0, fail(fmt.Errorf("entry %d of %d: value: %w", i, count, codec.Truncated(err)))
		}
		entries[k] = v
	}

	if _, err := r.ReadByte(); !errors.Is(err, codec.ErrEndOfInput) {
		if err == nil {
			err = ErrTrailingData
		}
		return nil, 0, fail(err)
	}
	return entries, got, nil
}

func readHeader(r *codec.Reader) (int32, int32, error) {
	version, err := r.ReadInt32()
	if err != nil {
		return 0, 0, codec.Truncated(err)
	}
	count, err := r.ReadInt32()
	if err != nil {
		return 0, 0, codec.Truncated(err)
	}
	if count < 0 {
		return 0, 0, fmt.Errorf("%w: negative count %d", ErrCorruptHeader, count)
	}
	return version, count, nil
}

// Info describes a snapshot file without decoding its entries.
type Info struct {
	Path    string `json:"path" yaml:"path"`
	Exists  bool   `json:"exists" yaml:"exists"`
	Version int32  `json:"version" yaml:"version"`
	Count   int32  `json:"count" yaml:"count"`
	Size    int64  `json:"size" yaml:"size"`
}

// Inspect reads the header of the snapshot at path.
func Inspect(path string) (Info, error) {
	info := Info{Path: path}

	size, ok, err := fsio.Size(path)
	if err != nil || !ok {
		return info, err
	}
	info.Exists = true
	info.Size = size

	f, err := fsio.Open(path)
	if err != nil {
		return info, err
	}
	if f == nil {
		info.Exists = false
		return info, nil
	}
	defer f.Close()

	r := codec.NewReader(f)
	info.Version, info.Count, err = readHeader(r)
	if err != nil {
		if isOSError(err) {
			return info, fsio.Wrap("read", path, err)
		}
		if errors.Is(err, codec.ErrTruncated) {
			err = fmt.Errorf("%w: header is %d bytes, want %d", ErrTruncatedSnapshot, size, headerSize)
		}
		return info, &FormatError{Path: path, Offset: r.Offset(), Err: err}
	}
	return info, nil
}

func isOSError(err error) bool {
	var pe *fs.PathError
	return errors.As(err, &pe)
}
