package utils

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

func btcParams(network string) *chaincfg.Params {
	switch network {
	case "regtest":
		return &chaincfg.RegressionNetParams
	case "testnet":
		return &chaincfg.TestNet3Params
	case "signet":
		return &chaincfg.SigNetParams
	default:
		return &chaincfg.MainNetParams
	}
}

func IsValidBtcAddress(addr, network string) bool {
	if addr == "" {
		return false
	}
	_, err := btcutil.DecodeAddress(addr, btcParams(network))
	return err == nil
}

func IsValidSparkAddress(addr string) bool {
	return strings.HasPrefix(addr, "sp1") || strings.HasPrefix(addr, "sprt1")
}

// IsValidLightningAddressUsername enforces the local-part charset used by
// LNURL address servers: lowercase letters, digits, dot, underscore, hyphen.
func IsValidLightningAddressUsername(username string) bool {
	if len(username) == 0 || len(username) > 64 {
		return false
	}
	for _, c := range username {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}

func IsValidURL(text string) bool {
	if text == "" {
		return false
	}
	u, err := url.Parse(text)
	if err != nil {
		return false
	}
	if u.Scheme != "" && u.Host != "" {
		return true
	}
	// host:port without scheme
	host, port, found := strings.Cut(text, ":")
	return found && host != "" && port != "" && !strings.Contains(port, "/")
}

func ValidateURL(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("url is empty")
	}
	if !strings.Contains(text, "://") {
		if _, _, found := strings.Cut(text, ":"); found {
			return text, nil
		}
		return "http://" + text, nil
	}
	u, err := url.Parse(text)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %s", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in url")
	}
	if u.Port() != "" {
		return u.Host, nil
	}
	return text, nil
}
