package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/dmint/internal/config"
	"github.com/Mohsinsiddi/dmint/internal/deploy"
	"github.com/Mohsinsiddi/dmint/internal/rpc"
	"github.com/Mohsinsiddi/dmint/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage networks and their RPC endpoints",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known networks",
	Long: `List the built-in networks plus any defined in ~/.dmint/networks.yaml.
A networks.yaml entry with the same name replaces the built-in one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 14},
			{Title: "Display", Width: 24},
			{Title: "Chain ID", Width: 10},
			{Title: "Currency", Width: 8},
			{Title: "Default", Width: 7},
		})
		for _, n := range reg.All() {
			def := ""
			if n.Name == cfg.DefaultNetwork {
				def = "✓"
			}
			t.AddRow(ui.Row{n.Name, n.DisplayName, fmt.Sprintf("%d", n.ChainID), n.NativeCurrency, def})
		}
		fmt.Fprint(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <network>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}
		n, err := reg.Get(args[0])
		if err != nil {
			return errors.Wrap(err, "run `dmint network list` to see all networks")
		}
		cfg.DefaultNetwork = n.Name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Default network set to "+ui.ChainName(n.Name)))
		return nil
	},
}

var networkAddRPCCmd = &cobra.Command{
	Use:   "add-rpc <network> <url>",
	Short: "Add a custom RPC endpoint, tried before the built-in ones",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.AddRPC(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("RPC %s added to %s", args[1], args[0])))
		return nil
	},
}

var networkRemoveRPCCmd = &cobra.Command{
	Use:   "remove-rpc <network> <url>",
	Short: "Remove a custom RPC endpoint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveRPC(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("RPC %s removed from %s", args[1], args[0])))
		return nil
	},
}

var networkPingCmd = &cobra.Command{
	Use:   "ping [network]",
	Short: "Probe every RPC endpoint of a network",
	Long: `Probe every RPC endpoint of a network with eth_blockNumber and show
latency and height, in the order the configured rpc_algorithm would pick them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			networkFlag = args[0]
		}
		n, err := selectedNetwork()
		if err != nil {
			return err
		}
		env, err := deploy.LoadEnv(".env")
		if err != nil {
			return err
		}
		urls := endpoints(n, env.APIKey)
		if len(urls) == 0 {
			return errors.Errorf("network %s has no usable RPC", n.Name)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()
		probed := rpc.ProbeAll(ctx, urls)
		ranked := rpc.Rank(probed, rpc.ParseAlgorithm(cfg.RPCAlgorithm))

		t := ui.NewTable([]ui.Column{
			{Title: "#", Width: 2},
			{Title: "URL", Width: 48},
			{Title: "Latency", Width: 10},
			{Title: "Block", Width: 12},
		})
		for i, e := range ranked {
			t.AddRow(ui.Row{fmt.Sprintf("%d", i+1), e.URL, e.Latency.Round(time.Millisecond).String(), fmt.Sprintf("%d", e.BlockNumber)})
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, t.Render())
		for _, e := range probed {
			if !e.Healthy() {
				fmt.Fprintln(out, ui.Err(e.URL+": "+e.Err.Error()))
			}
		}
		if len(ranked) == 0 {
			return rpc.ErrNoHealthyRPC
		}
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd, networkAddRPCCmd, networkRemoveRPCCmd, networkPingCmd)
}
