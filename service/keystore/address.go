package keystore

import (
	"bytes"
	"crypto/sha256"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

// AddressVersion is the leading byte of every account address.
const AddressVersion = 58

const addressLen = 25

// Address derives the base58 account address of an ed25519 public key:
// version || ripemd160(sha256(pub)) || checksum.
func Address(publicKey []byte) string {
	digest := sha256.Sum256(publicKey)
	hasher := ripemd160.New()
	hasher.Write(digest[:])
	body := append([]byte{AddressVersion}, hasher.Sum(nil)...)
	return base58.Encode(append(body, checksum(body)...))
}

// IsValidAddress reports whether address is a well formed account address.
func IsValidAddress(address string) bool {
	raw, err := base58.Decode(address)
	if err != nil || len(raw) != addressLen || raw[0] != AddressVersion {
		return false
	}
	return bytes.Equal(checksum(raw[:addressLen-4]), raw[addressLen-4:])
}

func checksum(body []byte) []byte {
	first := sha256.Sum256(body)
	second := sha256.Sum256(first[:])
	return second[:4]
}
