package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/material-list/constants"
	"github.com/joseph-ayodele/material-list/internal/app"
	"github.com/joseph-ayodele/material-list/internal/catalog"
	"github.com/joseph-ayodele/material-list/internal/common"
	"github.com/joseph-ayodele/material-list/internal/entity"
	"github.com/joseph-ayodele/material-list/internal/pipeline"
	"github.com/joseph-ayodele/material-list/internal/repository"
	"github.com/joseph-ayodele/material-list/internal/server"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch common.KindOf(err) {
	case common.CodeInvalidInput, common.CodeConfig:
		return 2
	}
	return 1
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	cfg := common.LoadConfig()
	root := &cobra.Command{
		Use:           "material-list",
		Short:         "Build a sorted material list PDF from Corte Certo INI files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&cfg.History.DSN, "history", cfg.History.DSN, "history database DSN (SQLite path or postgres:// URL)")
	root.PersistentFlags().StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "debug, info, warn or error")

	root.AddCommand(
		newGenerateCmd(cfg, out, errOut),
		newSearchCmd(cfg, out, errOut),
		newStockCmd(cfg, out, errOut),
		newHistoryCmd(cfg, out, errOut),
	)
	return root
}

func newGenerateCmd(cfg *common.Config, out, errOut io.Writer) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "generate <folder|archive.zip|archive.rar>",
		Short: "Extract, sort and render the material list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := common.NewLogger(cfg.Log, errOut)
			slog.SetDefault(logger)

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			job, err := a.NewJob(args[0], cfg.Output.DocumentName)
			if err != nil {
				return err
			}
			events, err := a.Orchestrator.Start(cmd.Context(), job)
			if err != nil {
				return err
			}

			var outcome entity.Outcome
			for ev := range events {
				switch ev.Kind {
				case pipeline.EventProgress:
					if !quiet {
						fmt.Fprintf(out, "[%3d%%]\n", ev.Percent)
					}
				case pipeline.EventLog:
					if !quiet {
						fmt.Fprintln(out, ev.Line)
					}
				case pipeline.EventDone:
					outcome = ev.Outcome
				}
			}
			if !outcome.Success {
				return common.NewAppError(outcome.Kind, outcome.Message, nil)
			}
			fmt.Fprintf(out, "%s %s\n", outcome.Message, outcome.OutputPath)
			if outcome.XLSXPath != "" {
				fmt.Fprintf(out, "Spreadsheet: %s\n", outcome.XLSXPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfg.Output.DocumentName, "name", "n", cfg.Output.DocumentName, "output PDF name (.pdf is added if missing)")
	cmd.Flags().StringVar(&cfg.RulesFile, "rules", cfg.RulesFile, "JSON file overriding the field key, brand token and marker")
	cmd.Flags().BoolVar(&cfg.Output.ExportXLSX, "xlsx", cfg.Output.ExportXLSX, "also write an .xlsx next to the PDF")
	cmd.Flags().IntVarP(&cfg.Output.Thickness, "thickness", "t", cfg.Output.Thickness, "only list materials of this thickness in mm (0 = all)")
	cmd.Flags().StringVar(&cfg.Archive.ScratchRoot, "scratch", cfg.Archive.ScratchRoot, "directory for temporary archive extraction")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the final result")
	return cmd
}

func newSearchCmd(cfg *common.Config, out, errOut io.Writer) *cobra.Command {
	var thickness int
	cmd := &cobra.Command{
		Use:   "search <folder|archive.zip|archive.rar> <term...>",
		Short: "Find materials by name, ignoring case and accents",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := common.NewLogger(cfg.Log, errOut)
			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			term := strings.Join(args[1:], " ")
			res, err := a.Search(cmd.Context(), args[0], catalog.Query{Term: term, Thickness: thickness})
			if err != nil {
				return err
			}
			if len(res.Matches) == 0 {
				return common.NoDataError(fmt.Sprintf("no material matches %q", term))
			}
			if res.Broadened {
				fmt.Fprintf(out, "No exact match for %q. Similar materials:\n", term)
			}
			return printMaterials(out, res.Matches)
		},
	}
	cmd.Flags().IntVarP(&thickness, "thickness", "t", 0, "only materials of this thickness in mm")
	cmd.Flags().StringVar(&cfg.RulesFile, "rules", cfg.RulesFile, "JSON file overriding the field key, brand token and marker")
	cmd.Flags().StringVar(&cfg.Archive.ScratchRoot, "scratch", cfg.Archive.ScratchRoot, "directory for temporary archive extraction")
	return cmd
}

func printMaterials(out io.Writer, entries []entity.MaterialEntry) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tMATERIAL\tTHICKNESS\tFAMILY")
	for _, e := range entries {
		mm := "-"
		if e.Thickness > 0 {
			mm = fmt.Sprintf("%dmm", e.Thickness)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Code, e.Label, mm, e.Family)
	}
	return w.Flush()
}

func newStockCmd(cfg *common.Config, out, errOut io.Writer) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "stock <material-code>",
		Short: "Show the sheets and offcuts on hand for a material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := catalog.ParseKind(kind)
			if err != nil {
				return err
			}
			logger := common.NewLogger(cfg.Log, errOut)
			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.Stock("", args[0], k)
			if err != nil {
				return err
			}
			return printStock(out, st, k)
		},
	}
	cmd.Flags().StringVar(&cfg.Stock.Dir, "dir", cfg.Stock.Dir, "directory holding the CHP/RET tables")
	cmd.Flags().StringVarP(&kind, "kind", "k", string(catalog.KindAll), "sheets, offcuts or all")
	return cmd
}

func printStock(out io.Writer, st catalog.Stock, k catalog.Kind) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if k != catalog.KindOffcuts {
		fmt.Fprintf(w, "Sheets for material %s: %d\n", st.Code, len(st.Sheets))
		if len(st.Sheets) > 0 {
			fmt.Fprintln(w, "NUMBER\tHEIGHT\tWIDTH\tDESCRIPTION")
			for _, s := range st.Sheets {
				fmt.Fprintf(w, "%d\t%g\t%g\t%s\n", s.Number, s.Height, s.Width, s.Description)
			}
		}
	}
	if k != catalog.KindSheets {
		fmt.Fprintf(w, "Offcuts for material %s: %d (%.2f m²)\n", st.Code, len(st.Offcuts), st.OffcutArea())
		if len(st.Offcuts) > 0 {
			fmt.Fprintln(w, "NUMBER\tQTY\tHEIGHT\tWIDTH\tAREA\tDESCRIPTION")
			for _, o := range st.Offcuts {
				fmt.Fprintf(w, "%d\t%d\t%g\t%g\t%.3f\t%s\n", o.Number, o.Quantity, o.Height, o.Width, o.Area(), o.Description)
			}
		}
	}
	return w.Flush()
}

func newHistoryCmd(cfg *common.Config, out, errOut io.Writer) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent jobs from the history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.History.DSN == "" {
				return common.ConfigError("no history database: set HISTORY_DSN or --history", nil)
			}
			logger := common.NewLogger(cfg.Log, errOut)
			db, err := server.ConnectDB(cmd.Context(), cfg.History.DSN, cfg.History.DialTimeout, logger)
			if err != nil {
				return common.ConfigError("open history database", err)
			}
			defer db.Close(logger)

			recs, err := repository.NewJobRepository(db, logger).List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printHistory(out, recs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of jobs to show")
	return cmd
}

func printHistory(out io.Writer, recs []entity.JobRecord) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(out, "no jobs recorded")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FINISHED\tSTATUS\tENTRIES\tPAGES\tINPUT\tOUTPUT / ERROR")
	for _, r := range recs {
		detail := r.OutputPath
		if r.Status != constants.JobStatusDone {
			detail = r.ErrorKind
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			r.FinishedAt.Local().Format(time.DateTime), r.Status, r.Entries, r.Pages, r.InputPath, detail)
	}
	return w.Flush()
}
