// Package main provides the modeler CLI.
package main

import "github.com/mesh-intelligence/modelcore/internal/cli"

func main() {
	cli.Execute()
}
