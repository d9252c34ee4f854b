// Package wallet recovers signer addresses from EIP-191 personal-sign
// signatures. Pure functions, no I/O, no state.
package wallet

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

const signatureLength = 65

// Recover returns the address that personal-signed message. The signature is
// hex (0x-prefixed or bare), 65 bytes, with V accepted as 0/1 or 27/28.
func Recover(message string, signature string) (common.Address, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != signatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", signatureLength, len(sig))
	}

	// Wallets emit V as 27/28; secp256k1 recovery wants 0/1.
	if sig[64] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return common.Address{}, fmt.Errorf("invalid recovery id %d", sig[64])
	}

	digest := accounts.TextHash([]byte(message))
	pub, err := ethcrypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover pubkey: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}
