package contract

import (
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
)

// BuiltinKind is the interface dmint expects a deployed contract to expose.
// New built-ins register themselves via init() in their own file.
type BuiltinKind struct {
	ID          string // machine key, e.g. "token"
	Name        string // artifact contractName, e.g. "Token"
	Description string // one-line summary shown in `contracts builtins`
	ABI         string // ABI JSON with only the members dmint uses
}

// Parsed returns the builtin ABI.
func (b BuiltinKind) Parsed() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(b.ABI))
	if err != nil {
		return abi.ABI{}, errors.Wrapf(err, "builtin %s ABI", b.ID)
	}
	return parsed, nil
}

var builtinRegistry = map[string]BuiltinKind{}

// RegisterBuiltin adds a built-in ABI to the global registry.
// Call this from init() in the file that defines the ABI.
func RegisterBuiltin(b BuiltinKind) {
	builtinRegistry[b.ID] = b
}

// GetBuiltin returns a built-in by ID. ok is false if not found.
func GetBuiltin(id string) (BuiltinKind, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// BuiltinByName returns the built-in whose contract name is name.
func BuiltinByName(name string) (BuiltinKind, bool) {
	for _, b := range builtinRegistry {
		if b.Name == name {
			return b, true
		}
	}
	return BuiltinKind{}, false
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []BuiltinKind {
	out := make([]BuiltinKind, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
