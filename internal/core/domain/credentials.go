package domain

import "context"

// CredentialsRepository stores the wallet mnemonic for session restore.
// GetMnemonic returns an empty string when no mnemonic is saved.
type CredentialsRepository interface {
	SaveMnemonic(ctx context.Context, mnemonic string) error
	GetMnemonic(ctx context.Context) (string, error)
	ClearMnemonic(ctx context.Context) error
	Close()
}
