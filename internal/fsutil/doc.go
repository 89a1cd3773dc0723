// Package fsutil holds the file primitives the stores are built on: tolerant
// reads, crash-safe replacement and directory listing.
//
// Every write goes through WriteFileAtomic, so a reader sees either the previous
// contents of a path or the new contents, never a prefix of them.
package fsutil
