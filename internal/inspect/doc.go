// Package inspect implements the debug inspector over a store registry: it
// lists stores under display labels, resolves a label back to a scope and
// name, and keeps a newest-first history of the pairs it found.
//
// Global stores are labelled with GlobalSuffix. The suffix is a display
// convention only; the registry never sees it.
package inspect
