package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/debugrun/internal/scaffold"
)

var scaffoldDirFlag string
var scaffoldPrefixFlag string
var scaffoldTestFlags []string
var scaffoldReplaceFlag string

// scaffoldCmd represents the scaffold command.
var scaffoldCmd = newScaffoldCmd()

func newScaffoldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaffold <name>",
		Short: "Generate a fresh debugrun module",
		Long: `Generate a small runnable module with stub tests already registered
on a harness. The result builds on its own; point --replace at a local
checkout of debugrun to develop against it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := scaffoldPrefixFlag
			if prefix == "" {
				prefix = cfg.Prefix
			}

			written, err := scaffold.Generate(scaffold.Options{
				Name:        args[0],
				Dir:         scaffoldDirFlag,
				Tests:       scaffoldTestFlags,
				Prefix:      prefix,
				ReplacePath: scaffoldReplaceFlag,
			})
			if err != nil {
				return err
			}

			for _, path := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
			}

			return nil
		},
	}
	cmd.Flags().StringVarP(&scaffoldDirFlag, "dir", "d", "", "target directory (defaults to the module name)")
	cmd.Flags().StringArrayVarP(&scaffoldTestFlags, "test", "t", nil, "stub test to generate (can be repeated)")
	cmd.Flags().StringVar(&scaffoldPrefixFlag, "prefix", "", "test name prefix (defaults to the configured prefix)")
	cmd.Flags().StringVar(&scaffoldReplaceFlag, "replace", "", "local path for a replace directive on the harness dependency")

	return cmd
}

func init() {
	rootCmd.AddCommand(scaffoldCmd)
}
