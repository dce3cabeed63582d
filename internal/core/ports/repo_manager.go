package ports

import "github.com/photonwallet/photon/internal/core/domain"

type RepoManager interface {
	Settings() domain.SettingsRepository
	Credentials() domain.CredentialsRepository
	Close()
}
