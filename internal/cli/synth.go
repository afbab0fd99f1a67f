package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TechInSite/aws-cdk/internal/eval"
)

var (
	synthFormat     string
	synthOut        string
	synthProperties map[string]string
)

var synthCmd = &cobra.Command{
	Use:   "synth [path]",
	Short: "Synthesize the deployment template",
	Long: `Evaluates the stack definition and renders the deployment template
without touching AWS. The template carries the encoded call payloads and
the resolved execution roles exactly as deploy would use them.`,
	RunE: runSynth,
}

func init() {
	synthCmd.Flags().StringVar(&synthFormat, "format", "json", "Template format (json or yaml)")
	synthCmd.Flags().StringVarP(&synthOut, "out", "o", "", "Write the template to a file instead of stdout")
	synthCmd.Flags().StringToStringVarP(&synthProperties, "prop", "D", nil, "Set external properties (format: key=value)")
}

func runSynth(cmd *cobra.Command, args []string) error {
	dir, entryPoint, err := resolveEntry(args)
	if err != nil {
		return err
	}

	stack, err := eval.NewEvaluator(dir).LoadStack(cmd.Context(), entryPoint, synthProperties)
	if err != nil {
		return fmt.Errorf("failed to load definition: %w", err)
	}

	tmpl := stack.Template()

	var out []byte
	switch synthFormat {
	case "json":
		out, err = tmpl.JSON()
	case "yaml":
		out, err = tmpl.YAML()
	default:
		return fmt.Errorf("unknown format %q (supported: json, yaml)", synthFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	if synthOut != "" {
		if err := os.WriteFile(synthOut, out, 0644); err != nil {
			return fmt.Errorf("failed to write template to %s: %w", synthOut, err)
		}
		fmt.Printf("Template written to %s\n", synthOut)
		return nil
	}

	fmt.Print(string(out))
	return nil
}
