package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TechInSite/aws-cdk/internal/state"
)

var (
	outputState string
	outputJSON  bool
)

var outputCmd = &cobra.Command{
	Use:   "output [logical-id [field]]",
	Short: "Show data captured from deployed resources",
	Long: `Reads physical ids and retained call responses from the state.

With no arguments every resource is listed. With a logical id, that
resource's record is shown. With a logical id and a field, the single
value is printed raw for scripting. The field PhysicalResourceId always
resolves to the resource's physical id.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runOutput,
}

func init() {
	outputCmd.Flags().StringVar(&outputState, "state", "", "State location (path or s3://bucket/key)")
	outputCmd.Flags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
}

func runOutput(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	backend, err := state.NewBackend(statePath(wd, outputState))
	if err != nil {
		return err
	}

	st, err := backend.Read(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}

	if len(args) == 0 {
		return printAllOutputs(st)
	}

	rs := st.Resource(args[0])
	if rs == nil {
		return fmt.Errorf("resource %q not found in state", args[0])
	}

	if len(args) == 2 {
		return printOutputField(rs, args[1])
	}

	if outputJSON {
		data, _ := json.MarshalIndent(map[string]any{
			"physicalId": rs.PhysicalID,
			"data":       rs.Data,
		}, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("# %s\n", rs.LogicalID)
	fmt.Printf("  physicalId = %s\n", rs.PhysicalID)
	if len(rs.Data) > 0 {
		fmt.Println("\n  Data:")
		for _, k := range sortedKeys(rs.Data) {
			fmt.Printf("    %s = %v\n", k, rs.Data[k])
		}
	}
	return nil
}

func printAllOutputs(st *state.State) error {
	if len(st.Resources) == 0 {
		fmt.Println("No resources in state.")
		return nil
	}

	if outputJSON {
		all := make(map[string]any, len(st.Resources))
		for _, rs := range st.Resources {
			all[rs.LogicalID] = map[string]any{
				"physicalId": rs.PhysicalID,
				"data":       rs.Data,
			}
		}
		data, _ := json.MarshalIndent(all, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	for _, rs := range st.Resources {
		fmt.Printf("%s = %s\n", rs.LogicalID, rs.PhysicalID)
		for _, k := range sortedKeys(rs.Data) {
			fmt.Printf("  %s = %v\n", k, rs.Data[k])
		}
	}
	return nil
}

func printOutputField(rs *state.ResourceState, field string) error {
	if field == "PhysicalResourceId" {
		fmt.Println(rs.PhysicalID)
		return nil
	}

	v, ok := rs.Data[field]
	if !ok {
		return fmt.Errorf("resource %q has no data field %q", rs.LogicalID, field)
	}

	if outputJSON {
		data, _ := json.Marshal(v)
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(v)
	return nil
}
