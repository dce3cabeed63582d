package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/photonwallet/photon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const mnemonicKey = "mnemonic"

type credentialsRepository struct {
	store *badgerhold.Store
}

func NewCredentialsRepository(baseDir string, logger badger.Logger) (domain.CredentialsRepository, error) {
	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, "credentials")
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open credentials store: %s", err)
	}
	return &credentialsRepository{store}, nil
}

type credentialsData struct {
	Mnemonic string
}

func (r *credentialsRepository) SaveMnemonic(ctx context.Context, mnemonic string) error {
	if mnemonic == "" {
		return fmt.Errorf("missing mnemonic")
	}
	if err := r.store.Upsert(mnemonicKey, credentialsData{Mnemonic: mnemonic}); err != nil {
		return fmt.Errorf("failed to save mnemonic: %w", err)
	}
	return nil
}

func (r *credentialsRepository) GetMnemonic(ctx context.Context) (string, error) {
	var data credentialsData
	err := r.store.Get(mnemonicKey, &data)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get mnemonic: %w", err)
	}
	return data.Mnemonic, nil
}

func (r *credentialsRepository) ClearMnemonic(ctx context.Context) error {
	err := r.store.Delete(mnemonicKey, &credentialsData{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to clear mnemonic: %w", err)
	}
	return nil
}

func (r *credentialsRepository) Close() {
	// nolint:all
	r.store.Close()
}
