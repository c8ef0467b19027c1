package wallet

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// Decimals is the number of fractional digits of every amount.
const Decimals = 8

var (
	// ErrInvalidAmount is returned for amounts that are not positive decimals.
	ErrInvalidAmount = errors.New("invalid amount")

	scale = uint256.NewInt(100000000)
)

// ParseAmount converts a decimal amount (string or JSON number) into atomic
// units. Digits past the eighth decimal are truncated.
func ParseAmount(value interface{}) (*uint256.Int, error) {
	var text string
	switch actual := value.(type) {
	case string:
		text = strings.TrimSpace(actual)
	case float64:
		if math.IsNaN(actual) || math.IsInf(actual, 0) || actual < 0 {
			return nil, ErrInvalidAmount
		}
		text = strconv.FormatFloat(actual, 'f', -1, 64)
	case int:
		text = strconv.Itoa(actual)
	case int64:
		text = strconv.FormatInt(actual, 10)
	case uint64:
		text = strconv.FormatUint(actual, 10)
	default:
		return nil, ErrInvalidAmount
	}
	whole, fraction, _ := strings.Cut(text, ".")
	if whole == "" {
		whole = "0"
	}
	if !digits(whole) || (fraction != "" && !digits(fraction)) {
		return nil, ErrInvalidAmount
	}
	if len(fraction) > Decimals {
		fraction = fraction[:Decimals]
	}
	fraction += strings.Repeat("0", Decimals-len(fraction))
	text = strings.TrimLeft(whole+fraction, "0")
	if text == "" {
		text = "0"
	}
	ret, err := uint256.FromDecimal(text)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	return ret, nil
}

// ParseAtomic parses an integer amount already in atomic units.
func ParseAtomic(text string) (*uint256.Int, error) {
	text = strings.TrimSpace(text)
	if !digits(text) {
		return nil, ErrInvalidAmount
	}
	if text = strings.TrimLeft(text, "0"); text == "" {
		text = "0"
	}
	ret, err := uint256.FromDecimal(text)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	return ret, nil
}

// FormatAmount renders atomic units with exactly eight decimals.
func FormatAmount(atomic *uint256.Int) string {
	if atomic == nil {
		atomic = new(uint256.Int)
	}
	whole, fraction := new(uint256.Int), new(uint256.Int)
	whole.DivMod(atomic, scale, fraction)
	text := fraction.Dec()
	return whole.Dec() + "." + strings.Repeat("0", Decimals-len(text)) + text
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
