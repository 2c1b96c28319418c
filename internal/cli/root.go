// Package cli implements the portal command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd assembles the portal command tree.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "portal",
		Short: "Parents Madrasa Portal session service",
		Long: `Portal session service.

Serves the session and profile API, and operates on stored client sessions
directly for support tasks. Redis is read from REDIS_ADDR; when it is unset
an embedded in-memory Redis is started.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "portal version %s\n", version)
		},
	})
	root.AddCommand(newServeCmd())
	root.AddCommand(newLogoutCmd())
	root.AddCommand(newInspectCmd())
	return root
}

// Execute runs the root command and reports errors on stderr.
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
