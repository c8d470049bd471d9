// Package snapshot reads and writes full dumps of a map.
//
// A snapshot file is laid out as:
//
//	[version:4 int32 BE]
//	[count:4 int32 BE]
//	[key][value] × count   (encoded by the caller's codecs)
//
// Files are always replaced atomically, so a crash during Write leaves the
// previous snapshot in place. A missing file reads as an empty map.
package snapshot
