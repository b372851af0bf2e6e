// Package build stamps every compiler invocation with a unique build
// identifier, recorded in the generated assembly's header comment and
// in build-cache rows so repeated compiles of the same source are
// distinguishable in a cache listing.
package build

import "github.com/google/uuid"

// ID is a build identifier, distinct from the cache's content hash: two
// builds of byte-identical source get the same content hash but
// different IDs.
type ID string

// NewID mints a fresh build identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// HeaderComment renders the assembly header comment line stamped at the
// top of every generated .s listing.
func HeaderComment(id ID, sourcePath string) string {
	return "# compiscript build " + string(id) + " from " + sourcePath
}
