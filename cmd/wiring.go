package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/dmint/internal/chain"
	"github.com/Mohsinsiddi/dmint/internal/config"
	"github.com/Mohsinsiddi/dmint/internal/contract"
	"github.com/Mohsinsiddi/dmint/internal/dapp"
	"github.com/Mohsinsiddi/dmint/internal/deploy"
	"github.com/Mohsinsiddi/dmint/internal/rpc"
	"github.com/Mohsinsiddi/dmint/internal/ui"
	"github.com/Mohsinsiddi/dmint/internal/wallet"
)

// errLine renders an error for the terminal. dApp errors show their
// underlying message verbatim.
func errLine(err error) string {
	var e *dapp.Error
	if errors.As(err, &e) {
		return ui.Err(e.Message())
	}
	return ui.Err(err.Error())
}

func newRegistry() (*chain.Registry, error) {
	overrides, err := chain.LoadNetworks(cfg.NetworksPath())
	if err != nil {
		return nil, err
	}
	return chain.NewRegistry(overrides...), nil
}

// selectedNetwork resolves --network, falling back to the configured default.
func selectedNetwork() (*chain.Network, error) {
	reg, err := newRegistry()
	if err != nil {
		return nil, err
	}
	name := networkFlag
	if name == "" {
		name = cfg.DefaultNetwork
	}
	return reg.Get(name)
}

// endpoints lists the RPC URLs of n: custom ones from config first, then
// the network's own with API_KEY substituted.
func endpoints(n *chain.Network, apiKey string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, u := range append(append([]string{}, cfg.GetRPCs(n.Name)...), n.Endpoints(apiKey)...) {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}

// dialNetwork connects to the best endpoint of n.
func dialNetwork(ctx context.Context, n *chain.Network) (*chain.Client, error) {
	env, err := deploy.LoadEnv(".env")
	if err != nil {
		return nil, err
	}
	urls := endpoints(n, env.APIKey)
	if len(urls) == 0 {
		return nil, errors.Errorf("network %s has no usable RPC (set %s or add one with `dmint network add-rpc`)", n.Name, deploy.EnvAPIKey)
	}
	sctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	c, err := rpc.Connect(sctx, urls, rpc.ParseAlgorithm(cfg.RPCAlgorithm), log)
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", n.Name)
	}
	return c, nil
}

// openKeystore opens the OS keychain, with an encrypted-file fallback kept
// in the config dir.
func openKeystore() (*wallet.Keystore, error) {
	return wallet.OpenKeystore(filepath.Join(cfg.Dir(), "keys"))
}

// newWalletManager returns a manager over the wallets file. Signing
// commands pass the keystore; listing does not need it.
func newWalletManager(ks wallet.KeystoreBackend) *wallet.Manager {
	opts := []wallet.Option{wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath()))}
	if ks != nil {
		opts = append(opts, wallet.WithKeystore(ks))
	}
	return wallet.NewManager(opts...)
}

// deploymentDir is where the publisher writes and the runtime reads.
func deploymentDir(n *chain.Network) string {
	return filepath.Join(config.Resolve(cfg.DeploymentsDir), n.Name)
}

// session is everything one runtime command needs.
type session struct {
	network *chain.Network
	client  *chain.Client
	app     *dapp.App
}

func (s *session) Close() { s.client.Close() }

// openSession loads the deployment, connects to the node and wires the
// dApp. obs may be nil. The wallet is only unlocked by App.Start.
func openSession(ctx context.Context, obs dapp.Observer) (*session, error) {
	n, err := selectedNetwork()
	if err != nil {
		return nil, err
	}
	d, err := contract.LoadDeployment(deploymentDir(n))
	if err != nil {
		return nil, err
	}
	if d.Manifest != nil && d.Manifest.ChainID != 0 && d.Manifest.ChainID != n.ChainID {
		log.Warn("deployment was published for another chain",
			zap.Int64("manifest_chain_id", d.Manifest.ChainID), zap.Int64("network_chain_id", n.ChainID))
	}

	client, err := dialNetwork(ctx, n)
	if err != nil {
		return nil, err
	}
	token, vault, err := d.Bind(client)
	if err != nil {
		client.Close()
		return nil, err
	}

	var provider dapp.Provider
	ks, err := openKeystore()
	if err != nil {
		log.Warn("keystore unavailable", zap.Error(err))
	} else {
		name := walletFlag
		if name == "" {
			name = cfg.DefaultWallet
		}
		w, err := wallet.Detect(newWalletManager(ks), name)
		if err == nil {
			prompter := ui.NewPrompter(os.Stdin, os.Stderr, assumeYes)
			provider = wallet.NewKeychainProvider(w, ks, client, prompter.Confirm)
		} else {
			log.Debug("no signing wallet", zap.Error(err))
		}
	}

	opts := []dapp.SequencerOption{dapp.WithLogger(log), dapp.WithConfirmTimeout(cfg.ConfirmWait())}
	if obs != nil {
		opts = append(opts, dapp.WithObserver(obs))
	}
	reader := dapp.NewBalanceReader(token, vault, obs)
	seq := dapp.NewSequencer(token, vault, reader, opts...)

	return &session{
		network: n,
		client:  client,
		app:     dapp.NewApp(provider, n.Name, reader, seq, log),
	}, nil
}
