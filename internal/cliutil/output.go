// Package cliutil holds helpers shared by the commands.
package cliutil

import (
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// AddOutputFlags adds the flags HandleOutput reads.
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("template", "", "Go template for the output (e.g. --template='{{.type}}')")
	cmd.Flags().String("format", "json", "Output format. Accepts 'json' or 'yaml'")
}

// HandleOutput prints v according to the template or format flag.
func HandleOutput(cmd *cobra.Command, v any) error {
	templateFlag, _ := cmd.Flags().GetString("template")
	formatFlag, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()

	if templateFlag != "" {
		tmpl, err := template.New("output").Parse(templateFlag)
		if err != nil {
			return fmt.Errorf("failed to parse template: %w", err)
		}

		if err := tmpl.Execute(out, v); err != nil {
			return fmt.Errorf("failed to execute template: %w", err)
		}
		fmt.Fprintln(out)
		return nil
	}

	var output []byte
	var err error

	switch formatFlag {
	case "yaml":
		output, err = yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal to YAML: %w", err)
		}
	case "json", "":
		output, err = json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal to JSON: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format %q", formatFlag)
	}

	fmt.Fprintln(out, string(output))
	return nil
}
