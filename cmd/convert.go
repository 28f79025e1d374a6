package cmd

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/dmint/internal/chain"
	"github.com/Mohsinsiddi/dmint/internal/config"
	"github.com/Mohsinsiddi/dmint/internal/ui"
)

var convertCmd = &cobra.Command{
	Use:   "convert <amount> [tokens|units]",
	Short: "Convert between token amounts and on-chain units",
	Long: `Convert between human token amounts and the 18-decimal integers the
contracts store.

Examples:
  dmint convert 1000                       # tokens → units
  dmint convert 1000000000000000000000 units  # units → tokens
  dmint convert 0x3635c9adc5dea00000 units    # hex units → tokens`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from := "tokens"
		if len(args) == 2 {
			from = strings.ToLower(args[1])
		}
		return convert(cmd.OutOrStdout(), args[0], from)
	},
}

func convert(w io.Writer, amount, from string) error {
	switch from {
	case "tokens", "token":
		units, err := chain.ParseUnits(amount, config.TokenDecimals)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, ui.KeyValueBlock("Conversion", [][2]string{
			{"Tokens", ui.Val(amount)},
			{"Units", ui.Val(units.String())},
			{"Hex", ui.Val("0x" + units.Text(16))},
		}))
	case "units", "unit", "wei":
		units, err := parseInt(amount)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, ui.KeyValueBlock("Conversion", [][2]string{
			{"Units", ui.Val(units.String())},
			{"Tokens", ui.Val(chain.FormatUnits(units, config.TokenDecimals))},
		}))
	default:
		return errors.Errorf("unknown unit %q (tokens|units)", from)
	}
	return nil
}

// parseInt reads a decimal or 0x-prefixed hex integer.
func parseInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		s, base = s[2:], 16
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok || v.Sign() < 0 {
		return nil, errors.Wrapf(chain.ErrInvalidAmount, "%q", s)
	}
	return v, nil
}
