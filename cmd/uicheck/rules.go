package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/uicheck-dev/uicheck/internal/manual"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules <manual.xml>",
	Short: "List the rules defined in a manual",
	Long: `Parse a manual and print its rule tree without evaluating anything.
Useful for verifying a manual parses and for discovering rule IDs to use
with validate's filter flags.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runRulesAction(args[0])
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRulesAction(manualPath string) error {
	m, err := manual.Load(manualPath)
	if err != nil {
		return fmt.Errorf("failed to load manual: %w", err)
	}

	fmt.Printf("Manual: %s (v%s)\n", m.Name, m.Version)
	if m.Metadata.Description != "" {
		fmt.Printf("Description: %s\n", m.Metadata.Description)
	}
	fmt.Printf("Rules: %d\n\n", m.CountRules())

	printRules(m.Rules, 0)
	return nil
}

func printRules(rules []manual.Rule, depth int) {
	indent := strings.Repeat("  ", depth)
	for i := range rules {
		r := &rules[i]

		fmt.Printf("%s%s\n", indent, r.ID)
		if r.Description != "" {
			fmt.Printf("%s  Description: %s\n", indent, r.Description)
		}
		fmt.Printf("%s  Selector: %s\n", indent, r.Selector)
		if r.Cardinality != "" {
			fmt.Printf("%s  Cardinality: %s\n", indent, r.Cardinality)
		}
		if r.Severity != "" {
			fmt.Printf("%s  Severity: %s\n", indent, r.Severity)
		}
		if len(r.Tags) > 0 {
			fmt.Printf("%s  Tags: %s\n", indent, strings.Join(r.Tags, ", "))
		}
		if r.HasSteps() {
			fmt.Printf("%s  Steps: %d\n", indent, len(r.Steps))
		}

		printRules(r.Children, depth+1)
	}
}
