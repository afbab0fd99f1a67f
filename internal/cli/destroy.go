package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TechInSite/aws-cdk/internal/engine"
)

var (
	destroyAutoApprove bool
	destroyRegion      string
	destroyState       string
)

var destroyCmd = &cobra.Command{
	Use:   "destroy [path]",
	Short: "Destroy all deployed resources",
	Long: `Dispatches the recorded delete call of every resource in state, newest
first, and removes the provisioned execution roles. Resources that declared
no delete call are dropped from state untouched.`,
	RunE: runDestroy,
}

func init() {
	destroyCmd.Flags().BoolVar(&destroyAutoApprove, "auto-approve", false, "Skip interactive approval")
	destroyCmd.Flags().StringVar(&destroyRegion, "region", "", "AWS region, overriding the environment")
	destroyCmd.Flags().StringVar(&destroyState, "state", "", "State location (path or s3://bucket/key)")
}

func runDestroy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dir, _, err := resolveEntry(args)
	if err != nil {
		return err
	}

	backend, err := openBackend(statePath(dir, destroyState))
	if err != nil {
		return err
	}
	defer backend.Unlock()

	st, err := backend.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}

	if len(st.Resources) == 0 && len(st.Roles) == 0 {
		fmt.Println("No resources in state. Nothing to destroy.")
		return nil
	}

	fmt.Printf("The following %d resource(s) will be destroyed:\n", len(st.Resources))
	for i := len(st.Resources) - 1; i >= 0; i-- {
		rs := st.Resources[i]
		fmt.Printf("  - %s (%s)\n", rs.LogicalID, rs.PhysicalID)
	}

	if !destroyAutoApprove {
		if !confirm("\nDo you really want to destroy all resources? (y/n): ") {
			fmt.Println("Destroy cancelled.")
			return nil
		}
	}

	runtime, roles, err := awsDeps(ctx, destroyRegion)
	if err != nil {
		return err
	}
	eng := engine.New(runtime, roles)

	fmt.Println()
	destroyErr := eng.Destroy(ctx, st, printProgress)

	if err := backend.Write(ctx, st); err != nil {
		if destroyErr != nil {
			return fmt.Errorf("destroy failed: %w (state write also failed: %v)", destroyErr, err)
		}
		return fmt.Errorf("failed to write state: %w", err)
	}
	if destroyErr != nil {
		return fmt.Errorf("destroy failed: %w", destroyErr)
	}

	fmt.Println("\nDestroy complete! All resources have been deleted.")
	return nil
}
