package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/parentsmadrasa/sessionkit"
	"github.com/spf13/cobra"
)

type logoutOutput struct {
	ClientID string                  `json:"client_id"`
	Report   sessionkit.LogoutReport `json:"report"`
	Error    string                  `json:"error,omitempty"`
}

type inspectOutput struct {
	ClientID string           `json:"client_id"`
	Restored bool             `json:"restored"`
	State    sessionkit.State `json:"state"`
	Error    string           `json:"error,omitempty"`
}

func newLogoutCmd() *cobra.Command {
	var (
		clientID string
		force    bool
	)
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear a client's stored session",
		Long: `Clear a client's stored session.

Runs the same removal, retry and fallback sequence as the profile screen and
prints the report. --force clears both storage scopes of the client outright.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			holder, err := rt.engine.Holder(clientID)
			if err != nil {
				return err
			}

			out := logoutOutput{ClientID: clientID}
			if force {
				err = holder.ForceLogout(cmd.Context())
				out.Report.Cleared = err == nil
			} else {
				out.Report, err = holder.Logout(cmd.Context())
			}
			if err != nil {
				out.Error = sessionkit.UserMessage(err)
			}
			if werr := writeJSON(cmd.OutOrStdout(), out); werr != nil {
				return werr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "client id whose session to clear")
	cmd.Flags().BoolVar(&force, "force", false, "clear both scopes without targeted removal")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func newInspectCmd() *cobra.Command {
	var clientID string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the stored session of a client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			holder, err := rt.engine.Holder(clientID)
			if err != nil {
				return err
			}

			out := inspectOutput{ClientID: clientID}
			out.Restored, err = holder.Restore(cmd.Context())
			out.State = holder.State()
			if err != nil {
				out.Error = err.Error()
			}
			if werr := writeJSON(cmd.OutOrStdout(), out); werr != nil {
				return werr
			}
			if err != nil && errors.Is(err, sessionkit.ErrStorage) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "client id to inspect")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
