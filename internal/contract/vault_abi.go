package contract

// VaultName is the artifact and address-book key of the deposit contract.
const VaultName = "DepositAndMint"

func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          "deposit-and-mint",
		Name:        VaultName,
		Description: "Takes approved token deposits and mints an NFT per deposit",
		ABI:         vaultABI,
	})
}

const vaultABI = `[
  {"type":"constructor","stateMutability":"nonpayable","inputs":[{"name":"_token","type":"address"}]},
  {"type":"function","name":"deposit","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"userDeposits","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`
