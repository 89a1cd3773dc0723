package domain

import (
	interfaces "sealkv/internal/domain/interfaces"
	types "sealkv/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Scope     = types.Scope
	StoreName = types.StoreName
	UserID    = types.UserID
	KeyID     = types.KeyID
	Ref       = types.Ref
	Lookup    = types.Lookup
	Entry     = types.Entry
	StoreMeta = types.StoreMeta
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	KeyValueStore   = interfaces.KeyValueStore
	StoreRegistry   = interfaces.StoreRegistry
	MasterKeySource = interfaces.MasterKeySource
	Observer        = interfaces.Observer
)

const (
	ScopeUser   = types.ScopeUser
	ScopeGlobal = types.ScopeGlobal
)

var (
	Found      = types.Found
	NotFound   = types.NotFound
	ParseScope = types.ParseScope
)
