package contract

import (
	"bytes"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Errors.
var (
	ErrInvalidArtifact = errors.New("invalid artifact")
	ErrNoBytecode      = errors.New("artifact has no bytecode")
	ErrMethodMissing   = errors.New("method missing from ABI")
)

// Artifact is a compiled contract descriptor. Hardhat and Foundry artifacts
// and bare ABI arrays are accepted.
type Artifact struct {
	ContractName string
	ABI          abi.ABI
	Bytecode     []byte // deployment bytecode; empty for ABI-only files

	raw []byte
}

// Method is one callable function of an artifact.
type Method struct {
	Name       string
	Signature  string
	Selector   string
	Mutability string
}

// LoadArtifact reads and parses an artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read artifact file")
	}
	a, err := ParseArtifact(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return a, nil
}

// ParseArtifact parses artifact JSON.
func ParseArtifact(data []byte) (*Artifact, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.Wrap(ErrInvalidArtifact, "file is empty")
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.Wrap(ErrInvalidArtifact, "not valid JSON")
	}

	root := gjson.ParseBytes(data)
	var abiJSON string
	switch {
	case root.IsArray():
		abiJSON = root.Raw
	case root.Get("abi").IsArray():
		abiJSON = root.Get("abi").Raw
	default:
		return nil, errors.Wrap(ErrInvalidArtifact, `no "abi" array`)
	}

	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidArtifact, "parsing ABI: %v", err)
	}

	a := &Artifact{
		ContractName: root.Get("contractName").String(),
		ABI:          parsed,
		raw:          data,
	}

	// Hardhat: "bytecode": "0x…"; Foundry: "bytecode": {"object": "0x…"}.
	bc := root.Get("bytecode")
	if bc.IsObject() {
		bc = bc.Get("object")
	}
	if hexCode := strings.TrimSpace(bc.String()); hexCode != "" && hexCode != "0x" {
		if !strings.HasPrefix(hexCode, "0x") {
			hexCode = "0x" + hexCode
		}
		code, err := hexutil.Decode(hexCode)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidArtifact, "bytecode: %v", err)
		}
		a.Bytecode = code
	}
	return a, nil
}

// Raw returns the artifact JSON exactly as it was read.
func (a *Artifact) Raw() []byte { return a.raw }

// Deployable reports an error unless the artifact carries bytecode.
func (a *Artifact) Deployable() error {
	if len(a.Bytecode) == 0 {
		return errors.Wrap(ErrNoBytecode, a.ContractName)
	}
	return nil
}

// Methods lists the artifact's functions sorted by name.
func (a *Artifact) Methods() []Method {
	out := make([]Method, 0, len(a.ABI.Methods))
	for _, m := range a.ABI.Methods {
		out = append(out, Method{
			Name:       m.Name,
			Signature:  m.Sig,
			Selector:   SelectorHex(m.Sig),
			Mutability: m.StateMutability,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Signature < out[j].Signature })
	return out
}

// Require checks that every function and the constructor of want are present
// in the artifact with identical signatures.
func (a *Artifact) Require(want abi.ABI) error {
	var missing []string
	for name, m := range want.Methods {
		got, ok := a.ABI.Methods[name]
		if !ok || got.Sig != m.Sig {
			missing = append(missing, m.Sig)
		}
	}
	if len(want.Constructor.Inputs) > 0 && !sameInputs(a.ABI.Constructor.Inputs, want.Constructor.Inputs) {
		missing = append(missing, "constructor"+want.Constructor.Sig)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.Wrapf(ErrMethodMissing, "%s: %s", a.ContractName, strings.Join(missing, ", "))
	}
	return nil
}

func sameInputs(a, b abi.Arguments) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type.String() != b[i].Type.String() {
			return false
		}
	}
	return true
}
