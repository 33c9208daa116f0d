package config

import (
	"fmt"
	"strings"
)

// StorageBackend selects where client values such as the session token live.
type StorageBackend string

const (
	StorageFile     StorageBackend = "file"
	StorageRedis    StorageBackend = "redis"
	StoragePostgres StorageBackend = "postgres"
	StorageMemory   StorageBackend = "memory"
)

// ParseStorageBackend validates a backend name.
func ParseStorageBackend(s string) (StorageBackend, error) {
	switch b := StorageBackend(strings.ToLower(strings.TrimSpace(s))); b {
	case StorageFile, StorageRedis, StoragePostgres, StorageMemory:
		return b, nil
	case "":
		return StorageFile, nil
	default:
		return "", fmt.Errorf("invalid storage backend: %s", s)
	}
}

// StorageConfig controls client-side persistence.
type StorageConfig struct {
	Backend StorageBackend `env:"STORAGE_BACKEND"   envDefault:"file"`
	// FilePath overrides the default <user config dir>/joinify/storage.json.
	FilePath string `env:"STORAGE_FILE_PATH"`
	// RunMigrationsOnStart applies the postgres schema before first use.
	RunMigrationsOnStart bool `env:"STORAGE_RUN_MIGRATIONS" envDefault:"true"`
	// EncryptionKey, a base64 32-byte key, seals stored values with AES-256-GCM.
	EncryptionKey string `env:"STORAGE_ENCRYPTION_KEY"`
}

// Sanitize normalizes the backend name, leaving unknown values for
// Validate to report.
func (c *StorageConfig) Sanitize() {
	c.Backend = StorageBackend(strings.ToLower(strings.TrimSpace(string(c.Backend))))
	if c.Backend == "" {
		c.Backend = StorageFile
	}
	c.FilePath = strings.TrimSpace(c.FilePath)
	c.EncryptionKey = strings.TrimSpace(c.EncryptionKey)
}

// Validate reports an unknown backend.
func (c *StorageConfig) Validate() error {
	_, err := ParseStorageBackend(string(c.Backend))
	return err
}
