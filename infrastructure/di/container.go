// Package di wires application components together at startup.
package di

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"pmwiki-gateway/domain/userdata"
	"pmwiki-gateway/infrastructure/config"
	dynamostore "pmwiki-gateway/infrastructure/persistence/dynamodb"
	filestore "pmwiki-gateway/infrastructure/persistence/file"
	memorystore "pmwiki-gateway/infrastructure/persistence/memory"
	"pmwiki-gateway/infrastructure/pmwiki"
	"pmwiki-gateway/pkg/observability"
)

// Container holds all initialized dependencies for the service.
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *observability.Collector
	BlobStore userdata.BlobStore
	Store     *userdata.Store
	Upstream  *pmwiki.Client
	Watcher   *config.Watcher
}

// NewContainer builds the full dependency graph and loads the persisted
// user-data snapshot into memory.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := provideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	metrics := observability.NewCollector("pmwiki_gateway")

	blobs, err := provideBlobStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize persistence: %w", err)
	}
	blobs = &instrumentedBlobStore{next: blobs, metrics: metrics}

	var storeOpts []userdata.Option
	if cfg.UserDataKey != "" {
		storeOpts = append(storeOpts, userdata.WithKey(cfg.UserDataKey))
	}
	store := userdata.New(blobs, logger, storeOpts...)
	store.Load(ctx)

	upstream := pmwiki.NewClient(pmwiki.ClientOptions{
		BaseURL:         cfg.UpstreamBaseURL,
		Timeout:         cfg.UpstreamTimeout,
		GraphCacheTTL:   cfg.GraphCacheTTL,
		SectionCacheTTL: cfg.SectionCacheTTL,
		Metrics:         metrics,
	}, logger)

	watcher, err := config.NewWatcher(cfg, logger)
	if err != nil {
		logger.Warn("config hot reload disabled", zap.Error(err))
		watcher = nil
	}

	return &Container{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics,
		BlobStore: blobs,
		Store:     store,
		Upstream:  upstream,
		Watcher:   watcher,
	}, nil
}

// Shutdown releases resources held by the container.
func (c *Container) Shutdown() {
	if c.Watcher != nil {
		c.Watcher.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}

// instrumentedBlobStore counts snapshot writes by status on top of the
// configured persistence driver.
type instrumentedBlobStore struct {
	next    userdata.BlobStore
	metrics *observability.Collector
}

func (s *instrumentedBlobStore) Read(ctx context.Context, key string) ([]byte, error) {
	return s.next.Read(ctx, key)
}

func (s *instrumentedBlobStore) Write(ctx context.Context, key string, blob []byte) error {
	err := s.next.Write(ctx, key, blob)
	if err != nil {
		s.metrics.SnapshotWrites.WithLabelValues("error").Inc()
		return err
	}
	s.metrics.SnapshotWrites.WithLabelValues("ok").Inc()
	return nil
}

func (s *instrumentedBlobStore) Remove(ctx context.Context, key string) error {
	return s.next.Remove(ctx, key)
}

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func provideBlobStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (userdata.BlobStore, error) {
	switch cfg.PersistenceDriver {
	case config.DriverMemory:
		return memorystore.NewBlobStore(), nil
	case config.DriverFile:
		return filestore.NewBlobStore(cfg.DataDir)
	case config.DriverDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := awsdynamodb.NewFromConfig(awsCfg)
		return dynamostore.NewBlobStore(client, cfg.DynamoDBTable, logger), nil
	default:
		return nil, fmt.Errorf("unknown persistence driver %q", cfg.PersistenceDriver)
	}
}
