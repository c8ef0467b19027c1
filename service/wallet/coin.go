// Package wallet routes balance queries and payments to the native chain or
// to the node's cross-chain wallets, and does all amount arithmetic in atomic
// units.
package wallet

import "strings"

// Native is the native coin symbol.
const Native = "QORT"

// Coin describes a supported coin.
type Coin struct {
	Symbol string
	Native bool
	// FixedFee is the atomic fee reserved by the funds check of foreign coins.
	FixedFee uint64
	// FeePerByte is the atomic fee rate passed to foreign sends.
	FeePerByte uint64
	// AmountKey names the amount field of the foreign send request.
	AmountKey string
	// UsesSeed marks wallets addressed by seed rather than master keys.
	UsesSeed bool
}

var coins = map[string]*Coin{
	Native: {Symbol: Native, Native: true},
	"BTC":  {Symbol: "BTC", FixedFee: 50000, FeePerByte: 100, AmountKey: "bitcoinAmount"},
	"LTC":  {Symbol: "LTC", FixedFee: 30000, FeePerByte: 30, AmountKey: "litecoinAmount"},
	"DOGE": {Symbol: "DOGE", FixedFee: 5000000, FeePerByte: 1000, AmountKey: "dogecoinAmount"},
	"DGB":  {Symbol: "DGB", FixedFee: 5000, FeePerByte: 10, AmountKey: "digibyteAmount"},
	"RVN":  {Symbol: "RVN", FixedFee: 562500, FeePerByte: 1125, AmountKey: "ravencoinAmount"},
	"ARRR": {Symbol: "ARRR", FixedFee: 10000, AmountKey: "arrrAmount", UsesSeed: true},
}

// Lookup returns the coin for symbol, case-insensitively.
func Lookup(symbol string) (*Coin, bool) {
	coin, ok := coins[strings.ToUpper(strings.TrimSpace(symbol))]
	return coin, ok
}

// Symbols returns all supported symbols.
func Symbols() []string {
	return []string{Native, "BTC", "LTC", "DOGE", "DGB", "RVN", "ARRR"}
}
