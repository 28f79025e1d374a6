package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/dmint/internal/ui"
	"github.com/Mohsinsiddi/dmint/internal/wallet"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the wallets dmint can connect",
}

var walletImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import a private key into the OS keychain",
	Long: `Import a signing wallet. The key is read from --key or, when the flag is
absent, from the first line of stdin, and stored in the OS keychain.
Only the address is written to the wallets file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hexKey := walletKeyFlag
		if hexKey == "" {
			fmt.Fprint(cmd.ErrOrStderr(), ui.Meta("Private key: "))
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.Wrap(err, "reading private key")
			}
			hexKey = strings.TrimSpace(line)
		}

		ks, err := openKeystore()
		if err != nil {
			return err
		}
		w, err := newWalletManager(ks).Import(args[0], hexKey)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Signing wallet %q imported: %s", w.Name, ui.Addr(w.Address))))
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new key and store it in the OS keychain",
	Long: `Generate a new keypair and store the private key in the OS keychain.

The private key is printed once. Keep a copy: without it the wallet cannot
be recovered if the keychain is lost.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		w, hexKey, err := newWalletManager(ks).Generate(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("New wallet", [][2]string{
			{"Name", ui.Val(w.Name)},
			{"Address", ui.Addr(w.Address)},
			{"Key", ui.Val(hexKey)},
		}))
		fmt.Fprintln(cmd.OutOrStdout(), ui.Warn("The private key is shown only once. Never share it."))
		return nil
	},
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> <address>",
	Short: "Add a watch-only wallet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager(nil)
		if err := mgr.Add(args[0], args[1]); err != nil {
			return err
		}
		w, err := mgr.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", w.Name, ui.Addr(w.Address))))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets, err := newWalletManager(nil).List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Meta("No wallets yet. Import one with: dmint wallet import <name>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 42},
			{Title: "Type", Width: 10},
			{Title: "Default", Width: 7},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = "✓"
			}
			t.AddRow(ui.Row{w.Name, w.Address, w.Type, def})
		}
		fmt.Fprint(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d wallet(s)", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		p := ui.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr(), assumeYes)
		if !p.ConfirmDanger(fmt.Sprintf("Remove wallet %q and its key?", name)) {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Cancelled."))
			return nil
		}

		// Watch-only wallets have no key, so the keychain is optional here.
		var ks wallet.KeystoreBackend
		if w, err := newWalletManager(nil).Get(name); err == nil && w.CanSign() {
			k, err := openKeystore()
			if err != nil {
				return err
			}
			ks = k
		}
		if err := newWalletManager(ks).Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set the wallet dmint connects by default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := newWalletManager(nil).SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

func init() {
	walletImportCmd.Flags().StringVar(&walletKeyFlag, "key", "", "hex private key (read from stdin when omitted)")
	walletCmd.AddCommand(walletImportCmd, walletGenerateCmd, walletAddCmd, walletListCmd, walletRemoveCmd, walletDefaultCmd)
}
