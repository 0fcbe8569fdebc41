package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/multilingual-go/cli/internal/ui"
	"github.com/satishbabariya/multilingual-go/cli/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if versionCheck != "" {
			ok, err := info.Satisfies(versionCheck)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("version %s does not satisfy %s", info.Version, versionCheck)
			}
			ui.PrintSuccess("version %s satisfies %s", info.Version, versionCheck)
			return nil
		}
		if versionFull {
			fmt.Fprintln(ui.Out, info.FullString())
			return nil
		}
		fmt.Fprintln(ui.Out, info.String())
		return nil
	},
}

var (
	versionFull  bool
	versionCheck string
)

func init() {
	versionCmd.Flags().BoolVar(&versionFull, "full", false, "Include build details")
	versionCmd.Flags().StringVar(&versionCheck, "check", "", "Fail unless the version satisfies a constraint such as \">= 0.1\"")

	rootCmd.AddCommand(versionCmd)
}
