package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sourcefix/autofix/internal/config"
	"github.com/sourcefix/autofix/internal/domain"
	"github.com/sourcefix/autofix/internal/host"
	"github.com/sourcefix/autofix/internal/policy"
	"github.com/sourcefix/autofix/internal/store"
	"github.com/sourcefix/autofix/internal/transform"
)

// findingDoc is the JSON wire form of one finding.
type findingDoc struct {
	ID       string            `json:"id"`
	Type     string            `json:"type"`
	File     string            `json:"file"`
	Line     int               `json:"line"`
	Severity string            `json:"severity"`
	Context  map[string]string `json:"context"`
	Message  string            `json:"message"`
}

// staticProducer serves pre-computed findings, filtered per file. Real
// detectors live outside the engine and hand their output in this way.
type staticProducer struct {
	findings []domain.Finding
}

func (p *staticProducer) Analyze(_ context.Context, filePath, _ string) ([]domain.Finding, error) {
	var out []domain.Finding
	for _, f := range p.findings {
		if f.File == filePath {
			out = append(out, f)
		}
	}
	return out, nil
}

var runCmd = &cobra.Command{
	Use:   "run <source-file>...",
	Short: "Apply one generate-approve-execute cycle to source files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		findingsPath, _ := cmd.Flags().GetString("findings")
		write, _ := cmd.Flags().GetBool("write")

		cfg := config.Default()
		if cfgPath != "" {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}

		findings, err := loadFindings(findingsPath)
		if err != nil {
			return err
		}

		pol, err := resolvePolicy(cfg)
		if err != nil {
			return err
		}

		var runStore store.RunStore
		if cfg.DBPath != "" {
			s, err := store.NewSQLiteStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer s.Close()
			runStore = s
		}

		var sources []host.SourceUnit
		for _, path := range args {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read source %s: %w", path, err)
			}
			sources = append(sources, host.SourceUnit{Path: path, Content: string(content)})
		}

		pipeline := transform.NewPipeline(transform.NewRegistry(transform.Strategy(cfg.Strategy)))
		h := host.NewHost(
			[]host.FindingProducer{&staticProducer{findings: findings}},
			&host.PolicyApprover{Policy: pol},
			pipeline,
			runStore,
			cfg.Generation(),
		)

		projectPath := filepath.Dir(args[0])
		result, err := h.Run(cmd.Context(), projectPath, sources)
		if err != nil {
			return err
		}

		printRun(cmd, result)

		if write {
			if err := writeBack(result, sources); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	runCmd.Flags().String("config", "", "path to engine config JSON")
	runCmd.Flags().String("findings", "", "path to findings JSON produced by external detectors")
	runCmd.Flags().Bool("write", false, "write transformed sources back to disk")
	runCmd.MarkFlagRequired("findings")
}

func loadFindings(path string) ([]domain.Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read findings file: %w", err)
	}
	var docs []findingDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse findings JSON: %w", err)
	}
	findings := make([]domain.Finding, 0, len(docs))
	for i, d := range docs {
		id := d.ID
		if id == "" {
			id = fmt.Sprintf("finding-%d", i+1)
		}
		findings = append(findings, domain.Finding{
			ID:       id,
			Type:     domain.FindingType(d.Type),
			File:     d.File,
			Line:     d.Line,
			Severity: domain.Severity(d.Severity),
			Context:  d.Context,
			Message:  d.Message,
		})
	}
	return findings, nil
}

func resolvePolicy(cfg *config.Config) (*policy.Policy, error) {
	var pol *policy.Policy
	var err error
	if cfg.PolicyFile != "" {
		pol, err = policy.LoadFile(cfg.PolicyFile)
	} else {
		pol, err = policy.Resolve(cfg.Policy)
	}
	if err != nil {
		return nil, err
	}
	if len(cfg.ProtectedPaths) > 0 {
		pol.Protected = cfg.ProtectedPaths
	}
	return pol, nil
}

func printRun(cmd *cobra.Command, result *domain.HostRunResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d findings, %d tasks proposed, %d processed, %d succeeded\n",
		len(result.Findings), result.TasksProposed, result.TasksProcessed, result.TasksSucceeded)

	for _, task := range result.Tasks {
		d := result.Decisions[task.ID]
		fmt.Fprintf(out, "\n[%s] %s (confidence %.2f)\n", d.Decision, task.Title, task.Confidence)
		if d.Reason != "" {
			fmt.Fprintf(out, "  %s\n", d.Reason)
		}
		if tr, ok := result.Results[task.ID]; ok {
			for _, w := range tr.Warnings {
				fmt.Fprintf(out, "  warning: %s\n", w)
			}
			if tr.Diff != "" {
				fmt.Fprintln(out, tr.Diff)
			}
		}
	}
}

// writeBack persists each file's final buffer: the last successful result
// per file already contains all earlier tasks' edits.
func writeBack(result *domain.HostRunResult, sources []host.SourceUnit) error {
	final := make(map[string]string)
	for _, task := range result.Tasks {
		if task.Status != domain.StatusExecutedSuccess {
			continue
		}
		tr := result.Results[task.ID]
		if tr != nil && tr.HasChanges() {
			final[executedFile(task.Intent)] = tr.TransformedSource
		}
	}
	for _, s := range sources {
		content, ok := final[s.Path]
		if !ok {
			continue
		}
		if err := os.WriteFile(s.Path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", s.Path, err)
		}
	}
	return nil
}

func executedFile(i domain.TaskIntent) string {
	if i.File != "" {
		return i.File
	}
	return i.Path
}
