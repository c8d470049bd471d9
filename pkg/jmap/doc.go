// Package jmap provides a journaled persistent map.
//
// A Map keeps its entries in memory and persists them as two files: a
// snapshot holding a full dump and a journal of Put/Remove records made
// since that dump. Load rebuilds the map by reading the snapshot and
// replaying the journal over it in file order.
//
// Two policies control durability:
//
//   - FlushOnMutation appends every mutation to the journal as it happens.
//     With it disabled, mutations survive only through Save.
//   - RetainJournalOnSave makes Save rewrite the journal from the mutations
//     recorded since the previous Save instead of deleting it.
//
// Both are read on every call and may be changed at any time.
//
// A Map is not safe for concurrent use, and a pair of files must be owned
// by a single Map at a time.
//
// A record cut short at the end of the journal, as left by a crash during an
// append, is dropped and cut off the file by default. WithTailPolicy can make
// Load fail instead.
package jmap
