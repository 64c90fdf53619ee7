// Package types defines the Item entity, the Store interface that every
// entity store adapter implements, backend configuration, and the standard
// error values for the orchard catalog.
package types
