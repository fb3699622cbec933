// Package apimodel is the in-memory structural model of a public API
// surface: packages, types and their members, indexed by fully-qualified
// name so lookups during comparison are constant time.
//
// Models are assembled with a Builder, which rejects duplicate declarations
// and cyclic supertype graphs. Once built a Model is never mutated.
//
// Member identity is the erased Signature: kind, name and the erased
// parameter types. Generic instantiation is stripped and type variables
// erase to their first bound:
//
//	class Box<T extends java.lang.Number> { method public void put(T); }
//	// put(T) has the signature put(java.lang.Number)
//
// Types referenced but not declared resolve to opaque placeholders that are
// used only as identities.
package apimodel
