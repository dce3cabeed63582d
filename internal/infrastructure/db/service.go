package db

import (
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/photonwallet/photon/internal/core/domain"
	"github.com/photonwallet/photon/internal/core/ports"
	badgerdb "github.com/photonwallet/photon/internal/infrastructure/db/badger"
)

var allowedTypes = strings.Join([]string{"badger"}, ",")

type ServiceConfig struct {
	DbType   string
	DbConfig []any
}

type service struct {
	settingsRepo    domain.SettingsRepository
	credentialsRepo domain.CredentialsRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	var (
		settingsRepo    domain.SettingsRepository
		credentialsRepo domain.CredentialsRepository
		err             error
	)

	switch config.DbType {
	case "badger":
		if len(config.DbConfig) != 2 {
			return nil, fmt.Errorf("badger db config must have 2 elements, got %d", len(config.DbConfig))
		}
		baseDir, ok := config.DbConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid base directory")
		}
		var logger badger.Logger
		if config.DbConfig[1] != nil {
			logger, ok = config.DbConfig[1].(badger.Logger)
			if !ok {
				return nil, fmt.Errorf("invalid logger")
			}
		}
		settingsRepo, err = badgerdb.NewSettingsRepository(baseDir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open settings db: %s", err)
		}
		credentialsRepo, err = badgerdb.NewCredentialsRepository(baseDir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open credentials db: %s", err)
		}
	default:
		return nil, fmt.Errorf("unsupported db type %s, please select one of %s", config.DbType, allowedTypes)
	}

	return &service{
		settingsRepo:    settingsRepo,
		credentialsRepo: credentialsRepo,
	}, nil
}

func (s *service) Settings() domain.SettingsRepository {
	return s.settingsRepo
}

func (s *service) Credentials() domain.CredentialsRepository {
	return s.credentialsRepo
}

func (s *service) Close() {
	s.settingsRepo.Close()
	s.credentialsRepo.Close()
}
