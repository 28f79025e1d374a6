package e2e_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

const hardhatKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestMain(m *testing.M) {
	// Build the binary before all E2E tests.
	tmp, err := os.MkdirTemp("", "dmint-e2e-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "dmint")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

func command(configDir string, args ...string) *exec.Cmd {
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = configDir
	cmd.Env = append(os.Environ(),
		"DMINT_CONFIG_DIR="+configDir,
		"DMINT_KEYRING_BACKEND=file",
		"DMINT_KEYRING_PASSWORD=e2e",
	)
	return cmd
}

func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	out, err := command(configDir, args...).CombinedOutput()
	return string(out), err
}

func runWithInput(t *testing.T, configDir, input string, args ...string) (string, error) {
	t.Helper()
	cmd := command(configDir, args...)
	cmd.Stdin = strings.NewReader(input)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestVersionFlag(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dmint")
	assert.Contains(t, out, "0.1.0")
}

func TestHelpCommand(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--help")
	require.NoError(t, err)
	for _, sub := range []string{"app", "balances", "mint", "deposit", "publish", "wallet", "network", "contracts", "convert"} {
		assert.Contains(t, out, sub)
	}
	assert.Contains(t, out, "--network")
	assert.Contains(t, out, "--wallet")
}

func TestNetworkList(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "network", "list")
	require.NoError(t, err)
	for _, n := range []string{"localhost", "hardhat", "bnb", "sepolia", "lineaSepolia"} {
		assert.Contains(t, out, n, "network list should contain %s", n)
	}
}

func TestNetworkUse(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "network", "use", "sepolia")
	require.NoError(t, err)
	assert.Contains(t, out, "sepolia")

	cfgOut, err := runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, cfgOut, `"default_network": "sepolia"`)
}

func TestNetworkUseUnknown(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "network", "use", "unknownchain99")
	assert.Error(t, err)
	assert.Contains(t, out, "network not found")
}

func TestWalletAddAndList(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "wallet", "add", "testwal", "0x1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "testwal")
	assert.Contains(t, out, "0x1234")
}

func TestWalletImportFromStdin(t *testing.T) {
	dir := t.TempDir()

	out, err := runWithInput(t, dir, hardhatKey+"\n", "wallet", "import", "deployer")
	require.NoError(t, err, out)
	assert.Contains(t, out, "0xf39F")

	out, err = runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "deployer")
	assert.NotContains(t, out, hardhatKey)
}

func TestWalletRemove(t *testing.T) {
	dir := t.TempDir()

	runCLI(t, dir, "wallet", "add", "w1", "0x1234567890abcdef1234567890abcdef12345678") //nolint:errcheck

	// Use stdin to confirm the prompt.
	runWithInput(t, dir, "y\n", "wallet", "remove", "w1") //nolint:errcheck

	out, err := runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "w1")
}

func TestWalletRemoveWithYesFlag(t *testing.T) {
	dir := t.TempDir()

	runCLI(t, dir, "wallet", "add", "w2", "0x1234567890abcdef1234567890abcdef12345678") //nolint:errcheck
	_, err := runCLI(t, dir, "--yes", "wallet", "remove", "w2")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "w2")
}

func TestRPCAdd(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "network", "add-rpc", "sepolia", "https://custom.rpc.url")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "custom.rpc.url")
}

func TestRPCAlgorithmSet(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "config", "set", "rpc_algorithm", "failover")
	require.NoError(t, err)

	out, _ := runCLI(t, dir, "config", "list")
	assert.Contains(t, out, "failover")

	_, err = runCLI(t, dir, "config", "set", "rpc_algorithm", "round-robin")
	assert.Error(t, err)
}

func TestConfigList(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "default_network")
	assert.Contains(t, out, "rpc_algorithm")
	assert.Contains(t, out, "confirm_timeout")
}

func TestConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	cmd := command(dir, "config", "list")
	cmd.Env = append(cmd.Env, "DMINT_DEFAULT_NETWORK=bnb")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"default_network": "bnb"`)
}

func TestConvert(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "convert", "1000", "tokens")
	require.NoError(t, err)
	assert.Contains(t, out, "1000000000000000000000")

	out, err = runCLI(t, t.TempDir(), "convert", "1", "units")
	require.NoError(t, err)
	assert.Contains(t, out, "0.000000000000000001")
}

func TestContractsBuiltins(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "contracts", "builtins")
	require.NoError(t, err)
	assert.Contains(t, out, "Token")
	assert.Contains(t, out, "DepositAndMint")
	assert.Contains(t, out, "0xb6b55f25")
}

func TestBalancesWithoutDeployment(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "-n", "localhost", "balances")
	assert.Error(t, err)
	assert.Contains(t, out, "dmint publish")
}

func TestPublishWithoutArtifacts(t *testing.T) {
	cmd := command(t.TempDir(), "-n", "localhost", "publish")
	cmd.Env = append(cmd.Env, "PRIVATE_KEY=0x"+hardhatKey)
	out, err := cmd.CombinedOutput()
	assert.Error(t, err)
	assert.Contains(t, string(out), "compile the contracts first")
}

func TestUnknownCommandShowsError(t *testing.T) {
	out, _ := runCLI(t, t.TempDir(), "unknowncommand")
	assert.Contains(t, strings.ToLower(out), "unknown command")
}
