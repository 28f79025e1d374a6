package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/dmint/internal/config"
	"github.com/Mohsinsiddi/dmint/internal/contract"
	"github.com/Mohsinsiddi/dmint/internal/deploy"
	"github.com/Mohsinsiddi/dmint/internal/ui"
)

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "Inspect the contracts dmint works with",
}

var contractsBuiltinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "List the contract interfaces dmint requires",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, b := range contract.AllBuiltins() {
			fmt.Fprintf(out, "%s  %s\n", ui.ChainName(b.Name), ui.Meta(b.Description))
			parsed, err := b.Parsed()
			if err != nil {
				return err
			}
			a := &contract.Artifact{ContractName: b.Name, ABI: parsed}
			printMethods(cmd, a)
			fmt.Fprintln(out)
		}
		return nil
	},
}

var contractsMethodsCmd = &cobra.Command{
	Use:   "methods <Token|DepositAndMint|artifact.json>",
	Short: "List the functions and selectors of a contract",
	Long: `List the functions of a contract with their 4-byte selectors.

The argument is either a path to an artifact file or a contract name, looked
up in the current network's deployment and then in artifacts_dir.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := resolveArtifact(args[0])
		if err != nil {
			return err
		}
		printMethods(cmd, a)
		return nil
	},
}

// resolveArtifact loads an artifact by path or contract name.
func resolveArtifact(arg string) (*contract.Artifact, error) {
	if _, err := os.Stat(arg); err == nil {
		return contract.LoadArtifact(arg)
	}
	if n, err := selectedNetwork(); err == nil {
		if a, err := contract.LoadArtifact(contract.ArtifactPath(deploymentDir(n), arg)); err == nil {
			return a, nil
		}
	}
	return deploy.FindArtifact(config.Resolve(cfg.ArtifactsDir), arg)
}

func printMethods(cmd *cobra.Command, a *contract.Artifact) {
	t := ui.NewTable([]ui.Column{
		{Title: "Selector", Width: 10},
		{Title: "Signature", Width: 36},
		{Title: "Mutability", Width: 10},
	})
	for _, m := range a.Methods() {
		t.AddRow(ui.Row{m.Selector, m.Signature, m.Mutability})
	}
	fmt.Fprint(cmd.OutOrStdout(), t.Render())
}

func init() {
	contractsCmd.AddCommand(contractsBuiltinsCmd, contractsMethodsCmd)
}
