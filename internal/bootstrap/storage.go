package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joinify/joinify-go/config"
	"github.com/joinify/joinify-go/internal/adapters/filestore"
	"github.com/joinify/joinify-go/internal/adapters/postgres"
	redisstore "github.com/joinify/joinify-go/internal/adapters/redis"
	"github.com/joinify/joinify-go/internal/adapters/sealed"
	memstore "github.com/joinify/joinify-go/internal/mocks/auth"
	"github.com/joinify/joinify-go/internal/ports"
)

// StoreDeps groups dependencies for OpenStore.
type StoreDeps struct {
	Storage  config.StorageConfig
	Postgres config.DBConfig
	Redis    config.RedisConfig
	Logger   *slog.Logger
}

// Store is an opened key-value store plus the function releasing its connections.
type Store struct {
	ports.KeyValueStore
	Backend config.StorageBackend
	// Location describes where values live, for display.
	Location string
	closeFn  func() error
}

// Close releases the store's connections, if any.
func (s *Store) Close() error {
	if s == nil || s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// OpenStore opens the configured storage backend, sealing values when an
// encryption key is configured.
func OpenStore(ctx context.Context, deps StoreDeps) (*Store, error) {
	var key []byte
	if deps.Storage.EncryptionKey != "" {
		var err error
		if key, err = sealed.ParseKey(deps.Storage.EncryptionKey); err != nil {
			return nil, fmt.Errorf("storage encryption: %w", err)
		}
	}

	store, err := openBackend(ctx, deps)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return store, nil
	}
	wrapped, err := sealed.New(store.KeyValueStore, key)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}
	store.KeyValueStore = wrapped
	store.Location += " (encrypted)"
	return store, nil
}

func openBackend(ctx context.Context, deps StoreDeps) (*Store, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	backend, err := config.ParseStorageBackend(string(deps.Storage.Backend))
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.StorageMemory:
		return &Store{KeyValueStore: memstore.NewMemoryStore(), Backend: backend, Location: "memory"}, nil

	case config.StorageRedis:
		client, err := ConnectRedis(ctx, DatabaseConfig{RedisConfig: deps.Redis, Logger: logger})
		if err != nil {
			return nil, err
		}
		return &Store{
			KeyValueStore: redisstore.NewStoreWithPrefix(client, deps.Redis.KeyPrefix),
			Backend:       backend,
			Location:      "redis " + deps.Redis.KeyPrefix + ports.TokenKey,
			closeFn:       client.Close,
		}, nil

	case config.StoragePostgres:
		db, err := ConnectDB(ctx, DatabaseConfig{DBConfig: deps.Postgres, Logger: logger})
		if err != nil {
			return nil, err
		}
		if deps.Storage.RunMigrationsOnStart {
			if _, migErr := RunMigrations(ctx, db, logger); migErr != nil {
				return nil, errors.Join(migErr, db.Close())
			}
		}
		return &Store{
			KeyValueStore: postgres.NewStore(db),
			Backend:       backend,
			Location:      fmt.Sprintf("postgres %s/%s", deps.Postgres.Host, deps.Postgres.Name),
			closeFn:       db.Close,
		}, nil

	default:
		path := deps.Storage.FilePath
		if path == "" {
			if path, err = filestore.DefaultPath(); err != nil {
				return nil, err
			}
		}
		fs, err := filestore.New(path)
		if err != nil {
			return nil, err
		}
		return &Store{KeyValueStore: fs, Backend: config.StorageFile, Location: fs.Path()}, nil
	}
}
