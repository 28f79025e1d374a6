package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/dmint/internal/config"
	"github.com/Mohsinsiddi/dmint/internal/dapp"
	"github.com/Mohsinsiddi/dmint/internal/ui"
)

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Show token, deposited and NFT balances of the connected wallet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := runContext(cmd)
		defer stop()

		sess, err := openSession(ctx, nil)
		if err != nil {
			return err
		}
		defer sess.Close()

		if err := sess.app.Start(ctx); err != nil {
			return err
		}
		printState(cmd.OutOrStdout(), sess.app.State())
		return nil
	},
}

// printState writes the account and its balances.
func printState(w io.Writer, s dapp.State) {
	if s.Session == nil {
		return
	}
	pairs := [][2]string{
		{"Account", ui.Addr(s.Session.Address.Hex())},
		{"Network", ui.ChainName(s.Session.Network)},
	}
	if b := s.Balances; b != nil {
		pairs = append(pairs,
			[2]string{"Token", ui.Amount(b.Token, "TKN")},
			[2]string{"Deposited", ui.Amount(b.Deposited, "TKN")},
			[2]string{"NFTs", ui.Val(fmt.Sprintf("%d", b.Secondary))},
		)
	}
	fmt.Fprintln(w, ui.KeyValueBlock("Balances", pairs))
}

// progressLine describes a running operation for the spinner.
func progressLine(s dapp.State) string {
	switch {
	case s.Pending != nil:
		return fmt.Sprintf("%s: %s  %s", s.Pending.Step, s.Phase, ui.TruncateAddr(s.Pending.Hash.Hex()))
	case s.Step != dapp.StepNone:
		return fmt.Sprintf("%s: %s", s.Step, s.Phase)
	case s.Phase == dapp.PhaseRefreshing:
		return "refreshing balances"
	}
	return "working"
}

// runOperation connects, runs op while the spinner follows the state, and
// prints the refreshed balances.
func runOperation(cmd *cobra.Command, label string, op func(context.Context, *session) error) error {
	ctx, stop := runContext(cmd)
	defer stop()

	sess, err := openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.app.Start(ctx); err != nil {
		return err
	}

	sp := ui.NewSpinner(cmd.ErrOrStderr(), label)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case s := <-sess.app.Updates():
				sp.Update(progressLine(s))
			case <-done:
				return
			}
		}
	}()

	sp.Start()
	err = op(ctx, sess)
	close(done)
	sp.Stop()
	if err != nil {
		return err
	}
	printState(cmd.OutOrStdout(), sess.app.State())
	return nil
}

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint " + config.MintAmount + " tokens to the connected wallet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, "minting", func(ctx context.Context, s *session) error {
			if err := s.app.Mint(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Minted "+config.MintAmount+" TKN"))
			return nil
		})
	},
}

var depositAmountFlag string

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Approve, then deposit tokens into the DepositAndMint contract",
	Long: `Approve the DepositAndMint contract for --amount tokens, wait for the
approval to confirm, then deposit the same amount. The deposit is never sent
when the approval fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, "approving", func(ctx context.Context, s *session) error {
			if err := s.app.Deposit(ctx, depositAmountFlag); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Deposited "+depositAmountFlag+" TKN"))
			return nil
		})
	},
}

func init() {
	depositCmd.Flags().StringVarP(&depositAmountFlag, "amount", "a", config.DefaultDepositAmount, "tokens to deposit")
}
