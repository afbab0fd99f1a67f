package cli

import (
	"github.com/spf13/cobra"

	"github.com/TechInSite/aws-cdk/internal/logging"
)

var (
	rootLogLevel string
	rootLogJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "awscdk",
	Short: "Declarative AWS API calls with managed lifecycles",
	Long: `awscdk deploys stacks of resources backed by plain AWS API calls.

A stack definition binds a call to each lifecycle event of a resource:
  • create, update and delete map to any action of any supported service
  • IAM grants are inferred from the declared calls
  • call responses are captured and referenced by later resources`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(rootLogLevel, rootLogJSON)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&rootLogJSON, "log-json", false, "Emit log records as JSON lines")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(synthCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(destroyCmd)
	rootCmd.AddCommand(outputCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}
