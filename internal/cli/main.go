package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "cuemerge <input.json|->",
		Short:        "Reconcile, filter and merge raw subtitle cues",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}
	root.SilenceErrors = true

	root.Flags().String("profile", "default", "Merge profile: default, direct or auto")
	root.Flags().Float64("max-gap", 0, "Override the profile max gap in seconds")
	root.Flags().Float64("max-duration", 0, "Override the profile max merged duration in seconds")
	root.Flags().Int("max-chars", 0, "Override the profile max merged length in characters")
	root.Flags().Bool("skip-merge", false, "Only reconcile and filter")
	root.Flags().String("format", "json", "Output format: json, srt or context")
	root.Flags().String("title", "", "Video title for the context format")
	root.Flags().String("video-id", "", "Video id for the context format")
	root.Flags().Int("limit", 0, "Max lines for the context format")
	root.Flags().String("log-level", "", "Log level, logs go to stderr")
	_ = root.Flags().MarkHidden("log-level")

	return root
}

func Main() {
	_ = godotenv.Load() // .env 可选

	root := newRootCmd()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
