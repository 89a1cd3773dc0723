// Package commands defines the kvinspect CLI, a debug surface over the
// encrypted store registry.
//
// Commands
//
//   - stores   List store labels (global stores carry a " (global)" suffix)
//   - get      Look a key up in a store
//   - set      Write a key
//   - rm       Remove a key
//   - keys     List the keys of a store
//   - dump     Print every key and value of a store
//   - drop     Delete a store and its key material
//   - logout   Delete the signed-in user's stores
//   - stats    Print entry counts and operation metrics
//
// # Implementation
//
// The root command loads config, applies flag overrides and builds the
// dependency graph (keyring, registry, inspector, metrics) before any
// subcommand runs. Stores are closed again after the subcommand returns.
package commands
