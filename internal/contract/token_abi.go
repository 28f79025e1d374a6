package contract

// TokenName is the artifact and address-book key of the token contract.
const TokenName = "Token"

func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          "token",
		Name:        TokenName,
		Description: "Mintable ERC-20 token (owner-initialized)",
		ABI:         tokenABI,
	})
}

const tokenABI = `[
  {"type":"constructor","stateMutability":"nonpayable","inputs":[{"name":"initialOwner","type":"address"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`
