// Package cli is the soundgate command line: a terminal front end over the
// session manager, uploads and the app services.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arturoeanton/soundgate/pkg/config"
)

// NewRootCmd builds the command tree.
func NewRootCmd(cfg *config.Config, out io.Writer) *cobra.Command {
	a := newApp(cfg, out)

	root := &cobra.Command{
		Use:   "soundgate",
		Short: "Music submissions, tickets and reels from the terminal",
		Long: `soundgate signs you in to the music platform, uploads tracks and artwork,
submits tracks to radio stations, lists tickets and pages through reels.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	root.AddCommand(
		newSignInCmd(a),
		newSignUpCmd(a),
		newSignOutCmd(a),
		newWhoAmICmd(a),
		newUploadCmd(a),
		newStationsCmd(a),
		newSubmitCmd(a),
		newTicketsCmd(a),
		newFeedCmd(a),
		newConnectionsCmd(a),
	)
	return root
}

// ExecuteContext runs the CLI against the process environment and prints a
// notice for any failure.
func ExecuteContext(ctx context.Context) error {
	cfg := config.Load()
	root := NewRootCmd(cfg, os.Stdout)
	err := root.ExecuteContext(ctx)
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}
