package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/multilingual-go/cli/internal/ui"
	"github.com/satishbabariya/multilingual-go/cli/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [expression]",
	Short: "Recompile a query whenever the schema file changes",
	Long: `Watch the schema file and print the compiled query again after each change.
Accepts the same flags as explain, except --interactive and --analyze.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&explainModel, "model", "m", "", "Model to query")
	watchCmd.Flags().StringVarP(&explainLang, "lang", "l", "", "Language the query runs in")
	watchCmd.Flags().StringArrayVarP(&explainOrder, "order", "o", nil, "Ordering term, repeatable")
	watchCmd.Flags().StringVarP(&explainProvider, "provider", "p", "", "SQL dialect: postgresql, mysql or sqlite")
	_ = watchCmd.MarkFlagRequired("model")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	opts := explainOptions{
		Model:    explainModel,
		Language: explainLang,
		Ordering: explainOrder,
		Provider: providerOrDefault(explainProvider),
	}
	if len(args) > 0 {
		opts.Expression = args[0]
	}

	w, err := watch.NewWatcher(func() error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		report, _, err := buildExplain(reg, opts)
		if err != nil {
			return err
		}
		printReport(report, false)
		return nil
	}, cfg.SchemaPath)
	if err != nil {
		return err
	}
	w.OnError = func(err error) { ui.PrintError("%v", err) }

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.PrintInfo("Watching %s (Ctrl+C to stop)", cfg.SchemaPath)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
