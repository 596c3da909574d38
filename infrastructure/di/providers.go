package di

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"inklings-backend/application/ports"
	appservices "inklings-backend/application/services"
	domaincfg "inklings-backend/domain/config"
	domainservices "inklings-backend/domain/services"
	"inklings-backend/infrastructure/config"
	"inklings-backend/infrastructure/embedding"
	"inklings-backend/infrastructure/messaging"
	ebpublisher "inklings-backend/infrastructure/messaging/eventbridge"
	"inklings-backend/infrastructure/persistence"
	dynamostore "inklings-backend/infrastructure/persistence/dynamodb"
	memorystore "inklings-backend/infrastructure/persistence/memory"
	"inklings-backend/pkg/observability"
)

// ConfigPath locates the YAML configuration file; empty means defaults plus
// environment variables
type ConfigPath string

// Container holds the wired application
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Watcher *config.Watcher

	Repositories ports.Repositories
	UnitOfWork   ports.UnitOfWork

	Visibility *domainservices.VisibilityService
	LinkGraph  *domainservices.LinkGraphService

	Friendships *appservices.FriendshipService
	Nodes       *appservices.NodeService
	Links       *appservices.LinkService
	Search      *appservices.SearchService
}

// Shutdown releases the container's background resources
func (c *Container) Shutdown() {
	if c.Watcher != nil {
		c.Watcher.Stop()
	}
	_ = c.Logger.Sync()
}

// Storage pairs a repository bundle with its unit of work
type Storage struct {
	Repos ports.Repositories
	UoW   ports.UnitOfWork
}

// SuperSet is the full provider graph
var SuperSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideMetrics,
	ProvideWatcher,
	ProvideStorage,
	ProvideRepositories,
	ProvideUnitOfWork,
	ProvideResolver,
	ProvideVisibilityService,
	ProvideLinkGraphService,
	ProvidePublisher,
	ProvideEmbedder,
	ProvideDomainConfig,
	ProvideTuning,
	ProvideFriendshipService,
	ProvideNodeService,
	ProvideLinkService,
	ProvideSearchService,
	wire.Struct(new(Container), "*"),
)

// ProvideConfig loads the process configuration
func ProvideConfig(path ConfigPath) (*config.Config, error) {
	return config.Load(string(path))
}

// ProvideLogger builds the zap logger for the configured environment
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zapCfg.Build()
}

// ProvideMetrics registers the metric collectors
func ProvideMetrics() *observability.Metrics {
	return observability.NewMetrics(prometheus.DefaultRegisterer)
}

// ProvideWatcher creates the hot-reloading tuning source and starts it
func ProvideWatcher(path ConfigPath, cfg *config.Config, logger *zap.Logger) (*config.Watcher, error) {
	watcher := config.NewWatcher(string(path), cfg.Domain(), logger)
	if err := watcher.Start(); err != nil {
		return nil, err
	}
	return watcher, nil
}

// ProvideStorage builds the configured persistence backend
func ProvideStorage(cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	switch cfg.Storage.Backend {
	case "dynamodb":
		client, err := dynamostore.NewClient(context.Background(), cfg.Storage.Region, cfg.Storage.Endpoint)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Repos: dynamostore.NewRepositories(client, cfg.Storage.TableName, logger),
			UoW:   dynamostore.NewUnitOfWork(client, cfg.Storage.TableName, logger),
		}, nil
	default:
		store := memorystore.NewStore()
		return &Storage{
			Repos: memorystore.NewRepositories(store),
			UoW:   memorystore.NewUnitOfWork(store, logger),
		}, nil
	}
}

// ProvideRepositories exposes the storage's repository bundle
func ProvideRepositories(s *Storage) ports.Repositories {
	return s.Repos
}

// ProvideUnitOfWork exposes the storage's unit of work
func ProvideUnitOfWork(s *Storage) ports.UnitOfWork {
	return s.UoW
}

// ProvideResolver builds the reference resolver over the repositories
func ProvideResolver(repos ports.Repositories) domainservices.NodeResolver {
	return persistence.NewResolver(repos)
}

// ProvideVisibilityService builds the policy engine
func ProvideVisibilityService(
	repos ports.Repositories,
	resolver domainservices.NodeResolver,
	logger *zap.Logger,
) *domainservices.VisibilityService {
	return domainservices.NewVisibilityService(
		repos.Friendships(),
		repos.Nodes(),
		repos.Links(),
		resolver,
		logger,
	)
}

// ProvideLinkGraphService builds the graph-browsing service
func ProvideLinkGraphService(
	repos ports.Repositories,
	resolver domainservices.NodeResolver,
	logger *zap.Logger,
) *domainservices.LinkGraphService {
	return domainservices.NewLinkGraphService(
		repos.Links(),
		repos.LinkTypes(),
		resolver,
		logger,
	)
}

// ProvidePublisher builds the event publisher; without a configured bus
// events are logged only
func ProvidePublisher(cfg *config.Config, logger *zap.Logger) (ports.EventPublisher, error) {
	if cfg.Events.BusName == "" {
		return messaging.NewLogPublisher(logger), nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Storage.Region))
	if err != nil {
		return nil, err
	}
	client := eventbridge.NewFromConfig(awsCfg)
	return ebpublisher.NewPublisher(client, cfg.Events.BusName, logger), nil
}

// ProvideEmbedder builds the embedding provider; without a configured
// endpoint embeddings are disabled
func ProvideEmbedder(cfg *config.Config, logger *zap.Logger) ports.EmbeddingProvider {
	if cfg.Embedding.Endpoint == "" {
		return embedding.NewDisabledProvider()
	}
	return embedding.NewHTTPProvider(cfg.Embedding.Endpoint, cfg.Embedding.Timeout, logger)
}

// ProvideDomainConfig snapshots the domain rules at startup
func ProvideDomainConfig(cfg *config.Config) *domaincfg.DomainConfig {
	domain := cfg.Domain()
	return &domain
}

// ProvideTuning exposes the watcher as the search tuning source
func ProvideTuning(watcher *config.Watcher) appservices.TuningSource {
	return watcher
}

// ProvideFriendshipService builds the friendship service
func ProvideFriendshipService(
	uow ports.UnitOfWork,
	repos ports.Repositories,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *appservices.FriendshipService {
	return appservices.NewFriendshipService(uow, repos, publisher, metrics, logger)
}

// ProvideNodeService builds the node service
func ProvideNodeService(
	uow ports.UnitOfWork,
	repos ports.Repositories,
	embedder ports.EmbeddingProvider,
	visibility *domainservices.VisibilityService,
	publisher ports.EventPublisher,
	domain *domaincfg.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *appservices.NodeService {
	return appservices.NewNodeService(uow, repos, embedder, visibility, publisher, domain, metrics, logger)
}

// ProvideLinkService builds the link service
func ProvideLinkService(
	uow ports.UnitOfWork,
	repos ports.Repositories,
	graph *domainservices.LinkGraphService,
	visibility *domainservices.VisibilityService,
	resolver domainservices.NodeResolver,
	publisher ports.EventPublisher,
	domain *domaincfg.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *appservices.LinkService {
	return appservices.NewLinkService(uow, repos, graph, visibility, resolver, publisher, domain, metrics, logger)
}

// ProvideSearchService builds the search service
func ProvideSearchService(
	repos ports.Repositories,
	embedder ports.EmbeddingProvider,
	visibility *domainservices.VisibilityService,
	graph *domainservices.LinkGraphService,
	resolver domainservices.NodeResolver,
	tuning appservices.TuningSource,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *appservices.SearchService {
	return appservices.NewSearchService(repos, embedder, visibility, graph, resolver, tuning, metrics, logger)
}
