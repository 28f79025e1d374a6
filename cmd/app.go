package cmd

import (
	"context"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/dmint/internal/config"
	"github.com/Mohsinsiddi/dmint/internal/dapp"
	"github.com/Mohsinsiddi/dmint/internal/metrics"
	"github.com/Mohsinsiddi/dmint/internal/ui"
)

var (
	appAmountFlag  string
	appMetricsAddr string
)

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Open the interactive deposit & mint page",
	Long: `Open the interactive page for the connected wallet.

The page shows the token balance, the deposited amount and the NFT count,
and offers two actions:

  m  mint ` + config.MintAmount + ` tokens to yourself
  d  approve, then deposit --amount tokens (default ` + config.DefaultDepositAmount + `)
  r  refresh balances
  c  clear the error message
  q  quit

Logs go to ~/.dmint/dmint.log while the page is open.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The terminal belongs to the page, so logs go to a file.
		fileLog, err := newLogger(verbose, cfg.LogPath(), zap.InfoLevel)
		if err != nil {
			return err
		}
		log = fileLog

		ctx, stop := runContext(cmd)
		defer stop()

		var obs dapp.Observer
		if appMetricsAddr != "" {
			m := metrics.New()
			obs = m
			go func() {
				if err := m.Serve(ctx, appMetricsAddr, log); err != nil {
					log.Error("metrics server stopped", zap.Error(err))
				}
			}()
		}

		sess, err := openSession(ctx, obs)
		if err != nil {
			return err
		}
		defer sess.Close()

		// Connect before the page takes over stdin so the prompt is usable.
		// A failure is kept in the state and shown by the page.
		if err := sess.app.Start(ctx); err != nil {
			log.Warn("start failed", zap.Error(err))
		}

		page := ui.NewPage(ctx, sess.app, ui.PageConfig{
			Network:       sess.network.DisplayName,
			ChainID:       sess.network.ChainID,
			TokenUnit:     "TKN",
			MintAmount:    config.MintAmount,
			DepositAmount: appAmountFlag,
			TxURL:         sess.network.TxURL,
		})
		_, err = tea.NewProgram(page, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	appCmd.Flags().StringVar(&appAmountFlag, "amount", config.DefaultDepositAmount, "tokens to approve and deposit with d")
	appCmd.Flags().StringVar(&appMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
}

// runContext is cancelled on SIGINT or SIGTERM.
func runContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}
