package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vsinha/cockpit/pkg/application/services/gantt"
	"github.com/vsinha/cockpit/pkg/domain/repositories"
	"github.com/vsinha/cockpit/pkg/infrastructure/cache"
	"github.com/vsinha/cockpit/pkg/infrastructure/config"
	"github.com/vsinha/cockpit/pkg/infrastructure/logging"
	csvsource "github.com/vsinha/cockpit/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/cockpit/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/cockpit/pkg/infrastructure/repositories/ontology"
	"github.com/vsinha/cockpit/pkg/infrastructure/repositories/sqlstore"
	"github.com/vsinha/cockpit/pkg/interfaces/http/handler"
)

// app is the wired set of dependencies behind a command
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	repo      repositories.DataSource
	service   *gantt.Service
	readiness []handler.ReadinessCheck
	closers   []func() error
}

// newApp builds the logger, cache, data source and gantt service from cfg
func newApp(cfg *config.Config) (*app, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	if err := a.initSource(); err != nil {
		a.Close()
		return nil, err
	}

	a.service = gantt.NewService(a.repo, gantt.Config{
		NodeLimit:       cfg.Scheduler.NodeLimit,
		DefaultLeadTime: cfg.Scheduler.DefaultLeadTime,
		SortSiblings:    cfg.Scheduler.SortSiblings,
	}, logger)
	return a, nil
}

func (a *app) initSource() error {
	switch a.cfg.Source.Kind {
	case "ontology":
		return a.initOntology()
	case "csv":
		return a.initCSV()
	case "sql":
		return a.initSQL()
	default:
		return fmt.Errorf("unknown source kind %q", a.cfg.Source.Kind)
	}
}

func (a *app) initOntology() error {
	oc := a.cfg.Ontology
	if oc.BaseURL == "" {
		return errors.New("ontology source requires ontology.base_url")
	}

	client := ontology.NewClient(ontology.ClientConfig{
		BaseURL:  oc.BaseURL,
		Token:    oc.Token,
		Network:  oc.Network,
		PageSize: oc.PageSize,
		Timeout:  oc.Timeout,
		CacheTTL: a.cfg.Cache.TTL,
	}, a.initCache(), a.logger)

	a.repo = ontology.NewRepository(client, ontology.RepositoryConfig{
		Types: ontology.ObjectTypes{
			BOM:             oc.ObjectTypes.BOM,
			Material:        oc.ObjectTypes.Material,
			PurchaseRequest: oc.ObjectTypes.PurchaseRequest,
			PurchaseOrder:   oc.ObjectTypes.PurchaseOrder,
			MRP:             oc.ObjectTypes.MRP,
			Inventory:       oc.ObjectTypes.Inventory,
		},
		BatchSize:   oc.BatchSize,
		Concurrency: oc.Concurrency,
	}, a.logger)

	a.logger.Info("Using ontology source",
		zap.String("base_url", oc.BaseURL),
		zap.String("network", oc.Network),
		zap.String("cache", a.cfg.Cache.Backend),
	)
	return nil
}

// initCache returns the response cache for the ontology client
func (a *app) initCache() cache.Cache {
	switch a.cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryCache().WithRetention(a.cfg.Cache.TTL)
	case "redis":
		rdb := initRedis(a.cfg.Redis)
		rc := cache.NewRedisCache(rdb, a.cfg.Redis.KeyPrefix)
		a.readiness = append(a.readiness, handler.ReadinessCheck{Name: "redis", Ping: rc.Ping})
		a.closers = append(a.closers, rdb.Close)
		return rc
	default:
		return cache.Nop{}
	}
}

func (a *app) initCSV() error {
	encoding, err := csvsource.ParseEncoding(a.cfg.Source.CSVEncoding)
	if err != nil {
		return err
	}

	snapshot, err := csvsource.NewLoaderWithEncoding(encoding).LoadScenario(a.cfg.Source.Scenario)
	if err != nil {
		return fmt.Errorf("failed to load scenario %s: %w", a.cfg.Source.Scenario, err)
	}

	store := memory.NewSupplyStore(snapshot)
	a.repo = store
	a.logger.Info("Loaded CSV scenario",
		zap.String("scenario", a.cfg.Source.Scenario),
		zap.Int("products", len(store.Products())),
		zap.Int("materials", len(snapshot.Materials)),
	)
	return nil
}

func (a *app) initSQL() error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	a.repo = store
	a.readiness = append(a.readiness, handler.ReadinessCheck{Name: "database", Ping: store.Ping})
	return nil
}

// openStore opens and migrates the configured database
func (a *app) openStore() (*sqlstore.Store, error) {
	db, err := sqlstore.OpenWithConfig(a.cfg.Database)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	if err := sqlstore.AutoMigrate(db); err != nil {
		return nil, err
	}
	a.logger.Debug("Database ready", zap.String("driver", a.cfg.Database.Driver))
	return sqlstore.NewStore(db), nil
}

// Close releases connections in reverse order of creation
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.logger.Sync()
	return errors.Join(errs...)
}

// ping runs every readiness check once
func (a *app) ping(ctx context.Context) error {
	for _, check := range a.readiness {
		if err := check.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", check.Name, err)
		}
	}
	return nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
