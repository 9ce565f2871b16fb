package batch

import (
	"log/slog"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Entry is one validated recipient/amount pair.
type Entry struct {
	Recipient common.Address
	Amount    *big.Int // base units
	// AmountText is the amount as the operator typed it, kept for display
	// and error reporting.
	AmountText string
}

// Batch is a fully validated payment batch. A nil Token means native-currency
// transfer. Batches are built fresh on every submission attempt and never
// mutated afterwards.
type Batch struct {
	Entries  []Entry
	Token    *common.Address
	Decimals int
}

// IsNative reports whether the batch pays out native currency.
func (b *Batch) IsNative() bool { return b.Token == nil }

// amountRegex matches an unsigned decimal: digits, optionally one dot.
// At least one digit is required somewhere.
var amountRegex = regexp.MustCompile(`^([0-9]+(\.[0-9]*)?|\.[0-9]+)$`)

type numberedLine struct {
	num  int // 1-based line number in the raw input
	text string
}

// nonBlankLines splits raw text into trimmed non-empty lines, keeping the
// original line numbers so errors point at what the operator sees.
func nonBlankLines(raw string) []numberedLine {
	var out []numberedLine
	for i, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if trimmed == "" {
			continue
		}
		out = append(out, numberedLine{num: i + 1, text: trimmed})
	}
	return out
}

// Parse turns raw "address,amount" text into a validated Batch. Validation is
// all-or-nothing: the first invalid line fails the whole batch so a submission
// can never pay out a partial list.
func Parse(rawText, tokenAddress string, decimals int) (*Batch, error) {
	b := &Batch{Decimals: decimals}

	for _, line := range nonBlankLines(rawText) {
		fields := strings.Split(line.text, ",")
		if len(fields) != 2 {
			return nil, &MalformedLineError{Line: line.num, Raw: line.text}
		}

		entry, err := validateEntry(line.num, strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1]), decimals)
		if err != nil {
			return nil, err
		}
		b.Entries = append(b.Entries, entry)
	}

	if len(b.Entries) == 0 {
		return nil, ErrEmptyBatch
	}

	if err := applyToken(b, tokenAddress); err != nil {
		return nil, err
	}

	slog.Debug("batch parsed",
		"entries", len(b.Entries),
		"native", b.IsNative(),
		"decimals", decimals,
	)

	return b, nil
}

// ParseColumns handles the legacy two-column input mode: addresses and amounts
// supplied as two independently line-delimited fields. Both columns must hold
// the same number of non-blank lines.
func ParseColumns(addressText, amountText, tokenAddress string, decimals int) (*Batch, error) {
	addrLines := nonBlankLines(addressText)
	amtLines := nonBlankLines(amountText)

	if len(addrLines) != len(amtLines) {
		return nil, &CountMismatchError{AddressCount: len(addrLines), AmountCount: len(amtLines)}
	}

	b := &Batch{Decimals: decimals}
	for i := range addrLines {
		entry, err := validateEntry(addrLines[i].num, addrLines[i].text, amtLines[i].text, decimals)
		if err != nil {
			// Amount errors should point at the amount column's own line.
			if amtErr, ok := err.(*InvalidAmountError); ok {
				amtErr.Line = amtLines[i].num
			}
			return nil, err
		}
		b.Entries = append(b.Entries, entry)
	}

	if len(b.Entries) == 0 {
		return nil, ErrEmptyBatch
	}

	if err := applyToken(b, tokenAddress); err != nil {
		return nil, err
	}

	return b, nil
}

func validateEntry(line int, addr, amount string, decimals int) (Entry, error) {
	if !common.IsHexAddress(addr) {
		return Entry{}, &InvalidAddressError{Line: line, Value: addr}
	}

	value, reason := parseAmount(amount, decimals)
	if reason != "" {
		return Entry{}, &InvalidAmountError{Line: line, Value: amount, Reason: reason}
	}

	return Entry{
		Recipient:  common.HexToAddress(addr),
		Amount:     value,
		AmountText: amount,
	}, nil
}

func applyToken(b *Batch, tokenAddress string) error {
	tokenAddress = strings.TrimSpace(tokenAddress)
	if tokenAddress == "" {
		return nil
	}

	if !common.IsHexAddress(tokenAddress) {
		return &InvalidTokenAddressError{Value: tokenAddress}
	}

	token := common.HexToAddress(tokenAddress)
	if token == (common.Address{}) {
		return &InvalidTokenAddressError{Value: tokenAddress}
	}

	b.Token = &token
	return nil
}

// parseAmount converts an unsigned decimal string into base units with at most
// the given number of fractional digits. Pure big.Int arithmetic; the decimal
// point is handled by string splitting so no rounding can occur. Returns an
// empty reason on success.
func parseAmount(s string, decimals int) (*big.Int, string) {
	if s == "" {
		return nil, "empty"
	}
	if strings.HasPrefix(s, "-") {
		return nil, "negative"
	}
	if !amountRegex.MatchString(s) {
		return nil, "not a decimal number"
	}

	intPart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart = s[:idx]
		fracPart = s[idx+1:]
	}

	if len(fracPart) > decimals {
		// Trailing zeros beyond the precision are still exact.
		trimmed := strings.TrimRight(fracPart, "0")
		if len(trimmed) > decimals {
			return nil, "exceeds allowed decimal precision"
		}
		fracPart = fracPart[:decimals]
	}

	if intPart == "" {
		intPart = "0"
	}
	// Right-pad the fraction so "0.5" at 18 decimals becomes 5 * 10^17.
	fracPart += strings.Repeat("0", decimals-len(fracPart))

	value, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return nil, "not a decimal number"
	}
	if value.Sign() == 0 {
		return nil, "must be greater than zero"
	}

	return value, ""
}
