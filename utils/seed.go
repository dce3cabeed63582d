package utils

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

func IsValidMnemonic(mnemonic string) error {
	words := strings.Fields(mnemonic)
	if len(words) != 12 {
		return fmt.Errorf("mnemonic must be 12 words")
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return fmt.Errorf("invalid mnemonic")
	}
	return nil
}

// WalletFingerprint derives a stable identifier for a mnemonic, used to
// tell wallets apart without exposing key material.
func WalletFingerprint(mnemonic string) (string, error) {
	if err := IsValidMnemonic(mnemonic); err != nil {
		return "", err
	}
	seed := bip39.NewSeed(mnemonic, "")
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return "", err
	}
	pub := master.PublicKey()
	return hex.EncodeToString(pub.Key[:4]), nil
}
