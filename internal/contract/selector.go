package contract

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// Selector returns the 4-byte function selector of a canonical signature
// such as "mint(address,uint256)".
func Selector(sig string) [4]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	var out [4]byte
	copy(out[:], h.Sum(nil)[:4])
	return out
}

// SelectorHex is Selector as a 0x-prefixed hex string.
func SelectorHex(sig string) string {
	s := Selector(sig)
	return hexutil.Encode(s[:])
}
