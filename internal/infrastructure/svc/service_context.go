package svc

import (
	"context"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"backpack/internal/application/port"
	"backpack/internal/infrastructure/config"
	"backpack/internal/infrastructure/journal"
	"backpack/internal/infrastructure/storage/composite"
	postgresrepo "backpack/internal/infrastructure/storage/postgres"
	redisrepo "backpack/internal/infrastructure/storage/redis"
	sqliterepo "backpack/internal/infrastructure/storage/sqlite"
	"backpack/pkg/backpack"
)

type ServiceContext struct {
	Ctx    context.Context
	Config *config.Config

	// 存储层
	redisRepo    *redisrepo.Repo
	sqliteRepo   *sqliterepo.Repo
	postgresRepo *postgresrepo.Repo
	journal      *composite.Repo

	// 交易所客户端
	Client *backpack.Client

	// 资源管理
	closerChain []func() error
}

// New 创建并初始化 ServiceContext
// storage first, then the transport decorated with the journal, then the client
func New(ctx context.Context, cfg *config.Config) (*ServiceContext, error) {
	sc := &ServiceContext{
		Ctx:         ctx,
		Config:      cfg,
		closerChain: make([]func() error, 0),
	}

	if err := sc.initializeStorage(); err != nil {
		_ = sc.Close()
		return nil, fmt.Errorf("%w: %w", ErrStorageInitFailed, err)
	}
	if err := sc.initClient(); err != nil {
		_ = sc.Close()
		return nil, err
	}
	return sc, nil
}

// initializeStorage 初始化请求日志存储 (SQLite / Redis / Postgres)
func (sc *ServiceContext) initializeStorage() error {
	if sc.Config.Journal.SQLite.Enabled {
		if err := sc.initSQLite(); err != nil {
			return fmt.Errorf("sqlite initialization failed: %w", err)
		}
	}

	if sc.Config.Journal.Redis.Enabled {
		if err := sc.initRedis(); err != nil {
			return fmt.Errorf("redis initialization failed: %w", err)
		}
	}

	if sc.Config.Journal.Postgres.Enabled {
		if err := sc.initPostgres(); err != nil {
			return fmt.Errorf("postgres initialization failed: %w", err)
		}
	}

	var repos []port.Journal
	if sc.sqliteRepo != nil {
		repos = append(repos, sc.sqliteRepo)
	}
	if sc.redisRepo != nil {
		repos = append(repos, sc.redisRepo)
	}
	if sc.postgresRepo != nil {
		repos = append(repos, sc.postgresRepo)
	}
	sc.journal = composite.New(repos...)
	return nil
}

// initRedis 初始化 Redis 连接
func (sc *ServiceContext) initRedis() error {
	rc := sc.Config.Journal.Redis
	rdb := redisclient.NewClient(&redisclient.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(sc.Ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	sc.redisRepo = redisrepo.New(rdb, rc.Prefix, time.Duration(rc.TTLSeconds)*time.Second, rc.StreamMaxLen)

	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return rdb.Close()
	})

	log.Info().
		Str("addr", rc.Addr).
		Int("db", rc.DB).
		Msg("✓ Redis journal initialized")

	return nil
}

// initSQLite 初始化 SQLite 数据库
func (sc *ServiceContext) initSQLite() error {
	repo, err := sqliterepo.New(sc.Config.Journal.SQLite.Path)
	if err != nil {
		return fmt.Errorf("sqlite repo creation failed: %w", err)
	}
	sc.sqliteRepo = repo

	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing sqlite connection")
		return repo.Close()
	})

	log.Info().
		Str("path", sc.Config.Journal.SQLite.Path).
		Msg("✓ SQLite journal initialized")

	return nil
}

// initPostgres 初始化 Postgres 连接
func (sc *ServiceContext) initPostgres() error {
	repo, err := postgresrepo.New(sc.Config.Journal.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("postgres repo creation failed: %w", err)
	}
	sc.postgresRepo = repo

	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing postgres connection")
		return repo.Close()
	})

	log.Info().Msg("✓ Postgres journal initialized")
	return nil
}

// initClient 构建 transport（可选 journal 装饰）与客户端
func (sc *ServiceContext) initClient() error {
	cc := sc.Config.Client
	var transport backpack.Transport
	httpTransport, err := backpack.NewHTTPTransport(backpack.HTTPTransportConfig{
		ProxyURL:           cc.ProxyURL,
		Timeout:            sc.Config.Timeout(),
		InsecureSkipVerify: cc.InsecureSkipVerify,
	})
	if err != nil {
		return err
	}
	transport = httpTransport
	if sc.journal != nil && sc.journal.Len() > 0 {
		transport = journal.NewTransport(httpTransport, sc.journal)
	}

	client, err := backpack.New(backpack.Config{
		APIKey:    sc.Config.Credentials.APIKey,
		APISecret: sc.Config.Credentials.APISecret,
		BaseURL:   cc.BaseURL,
		Transport: transport,
	})
	if err != nil {
		_ = transport.Close()
		return err
	}
	sc.Client = client

	// client 最先关闭：等请求结束后再关闭存储
	sc.closerChain = append(sc.closerChain, client.Close)

	log.Debug().
		Str("base_url", cc.BaseURL).
		Bool("proxy", cc.ProxyURL != "").
		Bool("private", client.Signer() != nil).
		Int("journal_backends", sc.journal.Len()).
		Msg("✓ Backpack client initialized")
	return nil
}

// GetSQLiteRepo 获取 SQLite 仓储
func (sc *ServiceContext) GetSQLiteRepo() *sqliterepo.Repo {
	return sc.sqliteRepo
}

// GetRedisRepo 获取 Redis 仓储
func (sc *ServiceContext) GetRedisRepo() *redisrepo.Repo {
	return sc.redisRepo
}

// Close 按照相反的顺序关闭所有资源
func (sc *ServiceContext) Close() error {
	var firstErr error
	for i := len(sc.closerChain) - 1; i >= 0; i-- {
		if err := sc.closerChain[i](); err != nil {
			log.Error().Err(err).Msg("error closing resource")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	sc.closerChain = nil
	return firstErr
}
