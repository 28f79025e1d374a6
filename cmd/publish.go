package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/dmint/internal/config"
	"github.com/Mohsinsiddi/dmint/internal/contract"
	"github.com/Mohsinsiddi/dmint/internal/deploy"
	"github.com/Mohsinsiddi/dmint/internal/ui"
	"github.com/Mohsinsiddi/dmint/internal/wallet"
)

var (
	publishOutFlag string
	publishEnvFlag string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Deploy Token and DepositAndMint and write the deployment directory",
	Long: `Deploy Token(owner) and DepositAndMint(token) to the selected network, then
write contract-addresses.json, Token.json, DepositAndMint.json and
deployment.json into the deployment directory the app reads.

Environment (process env or .env):
  PRIVATE_KEY     deployer key; without it the selected wallet signs
  OWNER_ADDRESS   initial token owner (default: the deployer)
  API_KEY         substituted into the network's RPC URL templates

The deployer needs at least ` + config.MinDeployBalance + ` of the native currency.
Compile the contracts first; artifacts are read from artifacts_dir.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			l, err := newLogger(false, "", zap.InfoLevel)
			if err != nil {
				return err
			}
			log = l
		}

		n, err := selectedNetwork()
		if err != nil {
			return err
		}
		env, err := deploy.LoadEnv(publishEnvFlag)
		if err != nil {
			return err
		}
		signer, err := publishSigner(env)
		if err != nil {
			return err
		}
		owner, err := env.Owner(signer.Address())
		if err != nil {
			return err
		}

		artifactsDir := config.Resolve(cfg.ArtifactsDir)
		token, err := deploy.FindArtifact(artifactsDir, contract.TokenName)
		if err != nil {
			return err
		}
		vault, err := deploy.FindArtifact(artifactsDir, contract.VaultName)
		if err != nil {
			return err
		}

		ctx, stop := runContext(cmd)
		defer stop()
		client, err := dialNetwork(ctx, n)
		if err != nil {
			return err
		}
		defer client.Close()

		outDir := publishOutFlag
		if outDir == "" {
			outDir = deploymentDir(n)
		}
		p, err := deploy.NewPublisher(n, client, signer, token, vault, outDir,
			deploy.WithLogger(log), deploy.WithOwner(owner))
		if err != nil {
			return err
		}

		dctx, cancel := context.WithTimeout(ctx, config.TxDeployTimeout)
		defer cancel()
		m, err := p.Publish(dctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.KeyValueBlock("Deployment", [][2]string{
			{"Network", ui.ChainName(m.Network)},
			{"Deployer", ui.Addr(m.Deployer)},
			{"Token", ui.Addr(m.Contracts[contract.TokenName])},
			{"Deposit", ui.Addr(m.Contracts[contract.VaultName])},
			{"Written to", ui.Meta(outDir)},
		}))
		fmt.Fprintln(out, ui.Success("Published. Run `dmint app --network "+n.Name+"` to use it."))
		return nil
	},
}

// publishSigner uses PRIVATE_KEY when set, else the selected signing wallet.
func publishSigner(env deploy.Env) (*wallet.Signer, error) {
	if env.PrivateKey != "" {
		return wallet.NewSigner(env.PrivateKey)
	}
	ks, err := openKeystore()
	if err != nil {
		return nil, err
	}
	name := walletFlag
	if name == "" {
		name = cfg.DefaultWallet
	}
	w, err := wallet.Detect(newWalletManager(ks), name)
	if err != nil {
		return nil, errors.Wrapf(err, "set %s or import a wallet", deploy.EnvPrivateKey)
	}
	return wallet.Unlock(w, ks)
}

func init() {
	publishCmd.Flags().StringVarP(&publishOutFlag, "out", "o", "", "output directory (default: <deployments_dir>/<network>)")
	publishCmd.Flags().StringVar(&publishEnvFlag, "env-file", ".env", "dotenv file with PRIVATE_KEY, OWNER_ADDRESS, API_KEY")
}
