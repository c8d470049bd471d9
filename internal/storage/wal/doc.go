// Package wal implements the journal of a journaled map: an append-only
// file of Put and Remove records replayed over the snapshot on load.
//
// Format:
//
//	[record]*
//	record = [tag:1][key][value]   value present only when tag == PUT
//
// Tags are 0x01 (PUT) and 0x02 (REMOVE). Keys and values are written by the
// caller's codecs. There is no header, count, trailer or checksum; every
// record is self-delimiting so the file can be appended to record by record
// and read until it is exhausted.
//
// Torn tails:
//
// A crash during an append can leave a record cut short at the end of the
// file. The Reader reports it as ErrTruncatedTail together with the offset of
// the last complete record. Replay either stops there (TailTruncate) or fails
// (TailStrict). An unknown tag is always ErrCorruptRecord.
package wal
