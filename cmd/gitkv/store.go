package main

import (
	"context"
	"fmt"

	"github.com/lxr/gitkv/config"
	"github.com/lxr/gitkv/repository"
	git_leveldb "github.com/lxr/gitkv/repository/leveldb"
	git_mem "github.com/lxr/gitkv/repository/mem"
	git_redis "github.com/lxr/gitkv/repository/redis"
)

// openStore opens the store cfg describes.  The returned function
// closes it.
func openStore(ctx context.Context, cfg *config.StoreConfig) (repository.ReadWriter, func() error, error) {
	switch cfg.Backend {
	case config.BackendMem:
		return git_mem.New(cfg.PageSize), func() error { return nil }, nil
	case config.BackendRedis:
		s, err := git_redis.Dial(ctx, cfg.Address, cfg.Password, cfg.DB, cfg.PageSize)
		if err != nil {
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.Address, err)
		}
		return s, s.Close, nil
	case config.BackendLevelDB:
		s, err := git_leveldb.Open(cfg.Path, cfg.PageSize)
		if err != nil {
			return nil, nil, fmt.Errorf("leveldb %s: %w", cfg.Path, err)
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
