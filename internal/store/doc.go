// Package store provides sealkv's encrypted key-value file stores and the
// registry that hands them out.
//
// Each store lives in its own directory:
//
//	key.json      the store's data key, sealed under the install master key
//	meta.json     format version, scope, name, key id, creation time
//	entries/      one <sha256(key)>.entry file per entry
//
// Entry files are sealed with the data key and bound to their scope, owner,
// store name and file name, so an entry moved or copied anywhere else fails
// authentication. Writes replace whole files atomically; a crash leaves the
// old or the new version of the entry being written and never touches other
// entries.
//
// All methods are concurrency-safe. Operations on different keys run in
// parallel; writes to one key are serialised.
package store
