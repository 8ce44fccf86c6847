package ir

// Key-derivation identifiers. These are data only: nothing in this module
// derives keys, and no kernel consumes them. Equality is structural (==).

// RootKey names the root secret a derivation starts from.
type RootKey struct {
	ID uint64 `json:"id"`
}

// AppID names the application a key is derived for.
type AppID struct {
	ID uint64 `json:"id"`
}

// ContextLabel separates derivations within one application.
type ContextLabel struct {
	Label string `json:"label"`
}

// DerivedKey is an opaque derived key value.
type DerivedKey struct {
	Value uint64 `json:"value"`
}
