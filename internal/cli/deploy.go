package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TechInSite/aws-cdk/internal/engine"
	"github.com/TechInSite/aws-cdk/internal/eval"
)

var (
	deployAutoApprove bool
	deployRegion      string
	deployState       string
	deployProperties  map[string]string
)

var deployCmd = &cobra.Command{
	Use:   "deploy [path]",
	Short: "Deploy the stack to AWS",
	Long: `Evaluates the stack definition, plans against the recorded state, and
performs the lifecycle calls for every change.

Completed work is recorded even when a later change fails, so a rerun
picks up where the deployment stopped.`,
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().BoolVar(&deployAutoApprove, "auto-approve", false, "Skip interactive approval of the plan")
	deployCmd.Flags().StringVar(&deployRegion, "region", "", "AWS region, overriding the environment")
	deployCmd.Flags().StringVar(&deployState, "state", "", "State location (path or s3://bucket/key)")
	deployCmd.Flags().StringToStringVarP(&deployProperties, "prop", "D", nil, "Set external properties (format: key=value)")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dir, entryPoint, err := resolveEntry(args)
	if err != nil {
		return err
	}

	fmt.Print("Evaluating definition... ")
	stack, err := eval.NewEvaluator(dir).LoadStack(ctx, entryPoint, deployProperties)
	if err != nil {
		fmt.Println("FAILED")
		return fmt.Errorf("failed to load definition: %w", err)
	}
	fmt.Println("OK")
	tmpl := stack.Template()

	backend, err := openBackend(statePath(dir, deployState))
	if err != nil {
		return err
	}
	defer backend.Unlock()

	st, err := backend.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}
	if st.Stack == "" {
		st.Stack = tmpl.Stack
	}

	runtime, roles, err := awsDeps(ctx, deployRegion)
	if err != nil {
		return err
	}
	eng := engine.New(runtime, roles)

	fmt.Print("Calculating plan... ")
	plan, err := eng.Plan(tmpl, st)
	if err != nil {
		fmt.Println("FAILED")
		return fmt.Errorf("plan generation failed: %w", err)
	}
	fmt.Println("OK")

	if plan.Empty() {
		fmt.Println("No changes. Deployment is up-to-date.")
		return nil
	}

	fmt.Println("\nThe deployment will perform the following actions:")
	renderPlan(plan)

	if !deployAutoApprove {
		if !confirm("\nDo you want to perform these actions? (y/n): ") {
			fmt.Println("Deploy cancelled.")
			return nil
		}
	}

	fmt.Printf("\nApplying %d changes...\n", len(plan.Changes))
	applyErr := eng.Apply(ctx, tmpl, plan, st, printProgress)

	// The state now reflects every completed change, failure or not.
	if err := backend.Write(ctx, st); err != nil {
		if applyErr != nil {
			return fmt.Errorf("deploy failed: %w (state write also failed: %v)", applyErr, err)
		}
		return fmt.Errorf("failed to write state: %w", err)
	}
	if applyErr != nil {
		return fmt.Errorf("deploy failed: %w", applyErr)
	}

	fmt.Printf("\nDeploy complete! Resources: %d added, %d changed, %d destroyed.\n",
		plan.Summary.Create, plan.Summary.Update, plan.Summary.Delete)
	return nil
}
