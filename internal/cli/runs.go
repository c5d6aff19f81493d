package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sourcefix/autofix/internal/config"
	"github.com/sourcefix/autofix/internal/domain"
	"github.com/sourcefix/autofix/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect and prune recorded runs",
}

func openStore(cmd *cobra.Command) (*store.SQLiteStore, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("no db_path configured; runs are not being recorded")
	}
	return store.NewSQLiteStore(cfg.DBPath)
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		project, _ := cmd.Flags().GetString("project")
		outcome, _ := cmd.Flags().GetString("outcome")
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := cmd.Context()
		var runs []domain.TaskRun
		switch {
		case project != "":
			runs, err = s.ListByProject(ctx, project)
		case outcome != "":
			runs, err = s.ListByOutcome(ctx, domain.RunOutcome(outcome))
		default:
			runs, err = s.ListRecent(ctx, limit)
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tPROJECT\tSTARTED\tOUTCOME")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				r.ID, r.ProjectPath,
				time.Unix(r.StartedAt, 0).Format(time.RFC3339),
				r.Outcome)
		}
		return w.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its audit trail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		run, err := s.Load(ctx, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "run %s\nproject: %s\nstarted: %s\noutcome: %s\nresults: %s\n",
			run.ID, run.ProjectPath,
			time.Unix(run.StartedAt, 0).Format(time.RFC3339),
			run.Outcome, run.ResultsJSON)

		events, err := s.ListAudit(ctx, run.ID)
		if err != nil {
			return err
		}
		for _, ev := range events {
			fmt.Fprintf(out, "  %s task=%s %s %s\n", ev.Action, ev.TaskID, ev.Severity, ev.DetailJSON)
		}
		return nil
	},
}

var runsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete runs older than a number of days",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		days, _ := cmd.Flags().GetInt("older-than-days")
		cutoff := time.Now().AddDate(0, 0, -days).Unix()
		n, err := s.DeleteOlderThan(cmd.Context(), cutoff)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d runs\n", n)
		return nil
	},
}

func init() {
	runsCmd.PersistentFlags().String("config", "", "path to engine config JSON")
	runsListCmd.Flags().String("project", "", "filter by project path")
	runsListCmd.Flags().String("outcome", "", "filter by outcome")
	runsListCmd.Flags().Int("limit", 20, "maximum runs to list")
	runsPurgeCmd.Flags().Int("older-than-days", 30, "delete runs older than this many days")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsPurgeCmd)
}
