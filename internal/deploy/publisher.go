package deploy

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/dmint/internal/chain"
	"github.com/Mohsinsiddi/dmint/internal/config"
	"github.com/Mohsinsiddi/dmint/internal/contract"
)

// ErrInsufficientDeployBalance is returned when the deployer cannot pay for
// the deployment.
var ErrInsufficientDeployBalance = errors.New("insufficient balance for deployment")

// Backend is the node connection the publisher deploys through.
type Backend interface {
	contract.Backend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// DeployFunc creates a contract from an artifact and waits until its code
// is on chain.
type DeployFunc func(ctx context.Context, opts *bind.TransactOpts, a *contract.Artifact, backend Backend, args ...interface{}) (common.Address, error)

// DeployAndWait is the default DeployFunc.
func DeployAndWait(ctx context.Context, opts *bind.TransactOpts, a *contract.Artifact, backend Backend, args ...interface{}) (common.Address, error) {
	_, tx, _, err := bind.DeployContract(opts, a.ABI, a.Bytecode, backend, args...)
	if err != nil {
		return common.Address{}, errors.Wrapf(err, "deploying %s", a.ContractName)
	}
	addr, err := bind.WaitDeployed(ctx, backend, tx)
	if err != nil {
		return common.Address{}, errors.Wrapf(err, "waiting for %s (tx %s)", a.ContractName, tx.Hash().Hex())
	}
	return addr, nil
}

// Signer produces signing options for the deployer account.
type Signer interface {
	Address() common.Address
	TransactOpts(ctx context.Context, chainID *big.Int) *bind.TransactOpts
}

// Publisher deploys Token then DepositAndMint and writes the deployment
// directory the runtime reads.
type Publisher struct {
	network *chain.Network
	backend Backend
	signer  Signer
	token   *contract.Artifact
	vault   *contract.Artifact
	outDir  string

	owner  *common.Address
	log    *zap.Logger
	deploy DeployFunc
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(p *Publisher) { p.log = l } }

// WithOwner sets the token's initial owner. The deployer is used otherwise.
func WithOwner(owner common.Address) Option { return func(p *Publisher) { p.owner = &owner } }

// WithDeployFunc replaces how contracts are created.
func WithDeployFunc(fn DeployFunc) Option { return func(p *Publisher) { p.deploy = fn } }

// NewPublisher checks both artifacts and returns a publisher writing to outDir.
func NewPublisher(network *chain.Network, backend Backend, signer Signer, token, vault *contract.Artifact, outDir string, opts ...Option) (*Publisher, error) {
	if err := checkArtifact(token, contract.TokenName); err != nil {
		return nil, err
	}
	if err := checkArtifact(vault, contract.VaultName); err != nil {
		return nil, err
	}
	p := &Publisher{
		network: network,
		backend: backend,
		signer:  signer,
		token:   token,
		vault:   vault,
		outDir:  outDir,
		log:     zap.NewNop(),
		deploy:  DeployAndWait,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Publish runs the deployment and returns the manifest it wrote.
func (p *Publisher) Publish(ctx context.Context) (*contract.Manifest, error) {
	if p.network.Ephemeral {
		p.log.Warn("deploying to the in-process hardhat network: state is lost when the node stops; use localhost to keep it",
			zap.String("network", p.network.Name))
	}

	deployer := p.signer.Address()
	balance, err := p.backend.BalanceAt(ctx, deployer, nil)
	if err != nil {
		return nil, errors.Wrap(err, "reading deployer balance")
	}
	p.log.Info("deployer",
		zap.Stringer("address", deployer),
		zap.String("balance", chain.FormatEther(balance)),
		zap.String("currency", p.network.NativeCurrency))

	minBalance, err := chain.ParseUnits(config.MinDeployBalance, config.TokenDecimals)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(minBalance) < 0 {
		return nil, errors.Wrapf(ErrInsufficientDeployBalance, "%s has %s %s, need at least %s",
			deployer.Hex(), chain.FormatEther(balance), p.network.NativeCurrency, config.MinDeployBalance)
	}

	chainID, err := p.backend.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading chain id")
	}
	owner := deployer
	if p.owner != nil {
		owner = *p.owner
	}

	tokenAddr, err := p.deploy(ctx, p.signer.TransactOpts(ctx, chainID), p.token, p.backend, owner)
	if err != nil {
		return nil, err
	}
	p.log.Info("contract deployed", zap.String("contract", contract.TokenName), zap.Stringer("address", tokenAddr))

	vaultAddr, err := p.deploy(ctx, p.signer.TransactOpts(ctx, chainID), p.vault, p.backend, tokenAddr)
	if err != nil {
		return nil, err
	}
	p.log.Info("contract deployed", zap.String("contract", contract.VaultName), zap.Stringer("address", vaultAddr))

	m := contract.NewManifest(p.network.Name, chainID.Int64(), deployer, contract.AddressBook{
		contract.TokenName: tokenAddr.Hex(),
		contract.VaultName: vaultAddr.Hex(),
	})
	if err := contract.WriteDeployment(p.outDir, m, map[string]*contract.Artifact{
		contract.TokenName: p.token,
		contract.VaultName: p.vault,
	}); err != nil {
		return nil, err
	}
	p.log.Info("deployment written", zap.String("dir", p.outDir))
	return &m, nil
}
