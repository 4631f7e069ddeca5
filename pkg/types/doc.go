// Package types defines the Store interface, configuration, and standard
// errors shared by the property engine, its persistence backends, and the
// modeler CLI.
package types
