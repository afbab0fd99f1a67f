package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TechInSite/aws-cdk/internal/state"
)

var stateLocation string

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect and modify the recorded state",
	Long:  `Commands for inspecting and modifying the deployment state.`,
}

var stateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List resources in state",
	RunE:  runStateList,
}

var stateShowCmd = &cobra.Command{
	Use:   "show <logical-id>",
	Short: "Show the record of a single resource",
	Args:  cobra.ExactArgs(1),
	RunE:  runStateShow,
}

var stateRmCmd = &cobra.Command{
	Use:   "rm <logical-id>",
	Short: "Remove a resource from state (does not destroy)",
	Args:  cobra.ExactArgs(1),
	RunE:  runStateRm,
}

func init() {
	stateCmd.PersistentFlags().StringVar(&stateLocation, "state", "", "State location (path or s3://bucket/key)")

	stateCmd.AddCommand(stateListCmd)
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateRmCmd)
}

func stateBackend() (state.Backend, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return state.NewBackend(statePath(wd, stateLocation))
}

func runStateList(cmd *cobra.Command, args []string) error {
	backend, err := stateBackend()
	if err != nil {
		return err
	}

	st, err := backend.Read(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}

	if len(st.Resources) == 0 {
		fmt.Println("No resources in state.")
		return nil
	}

	fmt.Printf("State version: %d, serial: %d, lineage: %s\n\n", st.Version, st.Serial, st.Lineage)
	for _, rs := range st.Resources {
		fmt.Printf("  %s (%s) -> %s\n", rs.LogicalID, rs.Type, rs.PhysicalID)
	}
	if len(st.Roles) > 0 {
		fmt.Println("\nRoles:")
		for _, role := range st.Roles {
			fmt.Printf("  %s -> %s\n", role.LogicalID, role.Arn)
		}
	}
	fmt.Printf("\nTotal: %d resource(s)\n", len(st.Resources))

	return nil
}

func runStateShow(cmd *cobra.Command, args []string) error {
	backend, err := stateBackend()
	if err != nil {
		return err
	}

	st, err := backend.Read(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}

	rs := st.Resource(args[0])
	if rs == nil {
		return fmt.Errorf("resource %s not found in state", args[0])
	}

	fmt.Printf("# %s\n", rs.LogicalID)
	fmt.Printf("  type        = %s\n", rs.Type)
	fmt.Printf("  physical_id = %s\n", rs.PhysicalID)
	if rs.Role != "" {
		fmt.Printf("  role        = %s\n", rs.Role)
	}

	if len(rs.Data) > 0 {
		fmt.Println("\n  Data:")
		for _, k := range sortedKeys(rs.Data) {
			fmt.Printf("    %s = %v\n", k, rs.Data[k])
		}
	}

	if rs.PropertiesHash != "" {
		fmt.Printf("\n  properties_hash = %s\n", rs.PropertiesHash)
	}

	return nil
}

func runStateRm(cmd *cobra.Command, args []string) error {
	backend, err := stateBackend()
	if err != nil {
		return err
	}

	if err := backend.Lock(); err != nil {
		return err
	}
	defer backend.Unlock()

	st, err := backend.Read(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}

	target := args[0]
	if st.Resource(target) == nil {
		return fmt.Errorf("resource %s not found in state", target)
	}
	st.RemoveResource(target)

	if err := backend.Write(cmd.Context(), st); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	fmt.Printf("Removed %s from state (resource was NOT destroyed)\n", target)
	return nil
}
