// Package app wires application dependencies for the CLI.
//
// It builds the master key source, the store registry, the inspector and the
// metrics collectors from config, exposing them via the Wire struct for
// commands to use.
package app
