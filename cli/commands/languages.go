package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/multilingual-go/cli/internal/ui"
	"github.com/satishbabariya/multilingual-go/languages"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the languages translations are stored in",
	Long: `List the configured languages with their ids, suffixes and the default.

With --match, print the language an Accept-Language header resolves to.`,
	Args: cobra.NoArgs,
	RunE: runLanguages,
}

var languagesMatch string

func init() {
	languagesCmd.Flags().StringVar(&languagesMatch, "match", "", "Accept-Language value to resolve, e.g. \"pl-PL,en;q=0.8\"")

	rootCmd.AddCommand(languagesCmd)
}

func runLanguages(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	langs := reg.Languages()

	if cmd.Flags().Changed("match") {
		l := langs.Match(languagesMatch)
		ui.PrintSuccess("%s resolves to %s (%s)", languagesMatch, l.Code, l.Name)
		return nil
	}
	return ui.PrintTable([]string{"ID", "Code", "Name", "Suffix", "Default"}, languageRows(langs))
}

func languageRows(langs *languages.Registry) [][]string {
	def := langs.DefaultID()
	rows := make([][]string, 0, langs.Len())
	for _, l := range langs.All() {
		mark := ""
		if l.ID == def {
			mark = "*"
		}
		rows = append(rows, []string{strconv.Itoa(l.ID), l.Code, l.Name, fmt.Sprintf("_%s", l.Suffix()), mark})
	}
	return rows
}
