// Package cli implements the modeler command-line interface: a thin cobra
// layer over the property engine, the metamodel, and the SQLite store.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/modelcore/pkg/modelcore"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// classify maps err to an exit code. Errors not marked as system failures
// are user errors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	return &exitError{code: exitUserError, err: err}
}

func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

func userError(format string, args ...any) error {
	return &exitError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

// NewRootCmd creates the top-level "modeler" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:           "modeler",
		Short:         "Edit UML/SysML models from the command line",
		Long:          "Modeler creates, edits, and inspects models stored as JSONL files\nin a project-local data directory.",
		Version:       modelcore.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.modeler)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: <config-dir>/model)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(&flags),
		newClassesCmd(&flags),
		newCreateCmd(&flags),
		newSetCmd(&flags),
		newUnsetCmd(&flags),
		newDeleteCmd(&flags),
		newShowCmd(&flags),
		newListCmd(&flags),
	)
	return root
}

// Run executes the CLI with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := classify(root.Execute())
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, newStyles(stderr).err.Render("modeler:"), err)
	var ee *exitError
	errors.As(err, &ee)
	return ee.code
}

// Execute runs the root command with the process arguments and exits with
// the appropriate code.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
