// Package modelcore holds release metadata for the modeler module.
package modelcore

// Version is the module version reported by the modeler CLI.
const Version = "0.1.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/modelcore"
