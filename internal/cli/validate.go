package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TechInSite/aws-cdk/internal/eval"
)

var validateProperties map[string]string

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate the stack definition",
	Long: `Evaluates the definition and builds the stack without touching AWS.
Every declaration error surfaces here: unknown actions, missing physical
resource ids, malformed suppression patterns, bad references.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringToStringVarP(&validateProperties, "prop", "D", nil, "Set external properties (format: key=value)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir, entryPoint, err := resolveEntry(args)
	if err != nil {
		return err
	}

	fmt.Printf("Checking %s... ", entryPoint)
	stack, err := eval.NewEvaluator(dir).LoadStack(cmd.Context(), entryPoint, validateProperties)
	if err != nil {
		fmt.Println("FAILED")
		return fmt.Errorf("validation failed: %w", err)
	}
	fmt.Println("OK")

	tmpl := stack.Template()
	fmt.Printf("\nDefinition is valid: %d resource(s), %d role(s).\n",
		len(tmpl.Resources), len(tmpl.Roles))
	return nil
}
