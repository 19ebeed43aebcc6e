package cli

import (
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/aretw0/chatlist/internal/config"
	"github.com/aretw0/chatlist/pkg/adapters/memory"
	"github.com/aretw0/chatlist/pkg/adapters/redis"
	"github.com/aretw0/chatlist/pkg/listsync"
	"github.com/aretw0/chatlist/pkg/persistence/middleware"
)

// createManager builds a list manager on the store selected by cfg.
// With the redis store, updates are also serialized across processes through
// a redis lock. The returned close function releases the store connection.
func createManager(cfg config.Config, logger *slog.Logger, opts ...listsync.Option) (*listsync.Manager, func() error, error) {
	opts = append([]listsync.Option{listsync.WithLogger(logger)}, opts...)

	mws, err := storeMiddlewares(cfg)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Store {
	case "memory":
		store := middleware.Chain(memory.NewStore(), mws...)
		return listsync.NewManager(store, opts...), func() error { return nil }, nil
	case "redis":
		var storeOpts []redis.Option
		if cfg.Redis.Prefix != "" {
			storeOpts = append(storeOpts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			storeOpts = append(storeOpts, redis.WithTTL(cfg.Redis.TTL))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, storeOpts...)
		locker := redis.NewLocker(store.Client(), cfg.Redis.Prefix+"lock:")

		opts = append(opts, listsync.WithLocker(locker), listsync.WithLockTTL(cfg.Redis.LockTTL))
		logger.Info("Using redis store", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
		return listsync.NewManager(middleware.Chain(store, mws...), opts...), store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// storeMiddlewares returns the store wrappers enabled by cfg.
func storeMiddlewares(cfg config.Config) ([]middleware.Middleware, error) {
	if cfg.EncryptionKey == "" {
		return nil, nil
	}
	active, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption_key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range cfg.EncryptionFallbackKeys {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption_fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	mw, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		return nil, err
	}
	return []middleware.Middleware{mw}, nil
}
