package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sourcefix/autofix/internal/policy"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect built-in policies and validate custom ones",
}

var policyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in approval policies",
	RunE: func(cmd *cobra.Command, args []string) error {
		builtins := policy.Builtins()
		names := make([]string, 0, len(builtins))
		for name := range builtins {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d rules)\n", name, len(builtins[name].Rules))
		}
		return nil
	},
}

var policyExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Export a built-in policy as a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := policy.Resolve(args[0])
		if err != nil {
			return err
		}
		data, err := policy.ExportJSON(p)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var policyCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a custom policy document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := policy.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "policy %q is valid (%d rules)\n", p.Name, len(p.Rules))
		return nil
	},
}

func init() {
	policyCmd.AddCommand(policyListCmd)
	policyCmd.AddCommand(policyExportCmd)
	policyCmd.AddCommand(policyCheckCmd)
}
