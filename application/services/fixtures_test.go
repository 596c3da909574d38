package services_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inklings-backend/application/ports"
	"inklings-backend/application/services"
	domaincfg "inklings-backend/domain/config"
	"inklings-backend/domain/core/valueobjects"
	domainevents "inklings-backend/domain/events"
	domainservices "inklings-backend/domain/services"
	"inklings-backend/infrastructure/persistence"
	"inklings-backend/infrastructure/persistence/memory"
	pkgerrors "inklings-backend/pkg/errors"
	"inklings-backend/pkg/observability"
)

// stubEmbedder returns a deterministic vector per text, or fails when no
// vector was registered
type stubEmbedder struct {
	vectors map[string]valueobjects.Embedding
}

func (s *stubEmbedder) EmbedText(_ context.Context, text string) (valueobjects.Embedding, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return valueobjects.Embedding{}, pkgerrors.NewExternalError("embedding-api",
		pkgerrors.NewInternalError("no stub vector for text"))
}

// capturingPublisher records published events
type capturingPublisher struct {
	events []domainevents.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, event domainevents.DomainEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) PublishBatch(_ context.Context, events []domainevents.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *capturingPublisher) typesSeen() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.GetEventType())
	}
	return out
}

type appFixture struct {
	repos     ports.Repositories
	uow       ports.UnitOfWork
	embedder  *stubEmbedder
	publisher *capturingPublisher

	visibility *domainservices.VisibilityService
	graph      *domainservices.LinkGraphService
	resolver   domainservices.NodeResolver

	friendships *services.FriendshipService
	nodes       *services.NodeService
	links       *services.LinkService
	search      *services.SearchService
}

func newAppFixture(t *testing.T) *appFixture {
	t.Helper()

	store := memory.NewStore()
	repos := memory.NewRepositories(store)
	logger := zap.NewNop()
	uow := memory.NewUnitOfWork(store, logger)
	resolver := persistence.NewResolver(repos)
	visibility := domainservices.NewVisibilityService(repos.Friendships(), repos.Nodes(), repos.Links(), resolver, logger)
	graph := domainservices.NewLinkGraphService(repos.Links(), repos.LinkTypes(), resolver, logger)
	metrics := observability.NewNopMetrics()
	embedder := &stubEmbedder{vectors: make(map[string]valueobjects.Embedding)}
	publisher := &capturingPublisher{}
	cfg := domaincfg.DefaultDomainConfig()
	tuning := services.StaticTuning{Config: *cfg}

	return &appFixture{
		repos:       repos,
		uow:         uow,
		embedder:    embedder,
		publisher:   publisher,
		visibility:  visibility,
		graph:       graph,
		resolver:    resolver,
		friendships: services.NewFriendshipService(uow, repos, publisher, metrics, logger),
		nodes:       services.NewNodeService(uow, repos, embedder, visibility, publisher, cfg, metrics, logger),
		links:       services.NewLinkService(uow, repos, graph, visibility, resolver, publisher, cfg, metrics, logger),
		search:      services.NewSearchService(repos, embedder, visibility, graph, resolver, tuning, metrics, logger),
	}
}

// retune rebuilds the search service around a different tuning source
func (f *appFixture) retune(tuning services.TuningSource) {
	f.search = services.NewSearchService(f.repos, f.embedder, f.visibility, f.graph, f.resolver,
		tuning, observability.NewNopMetrics(), zap.NewNop())
}

func userID(t *testing.T, raw string) valueobjects.UserID {
	t.Helper()
	u, err := valueobjects.NewUserID(raw)
	require.NoError(t, err)
	return u
}

// vectorAt builds a unit vector whose cosine distance to vectorAt(1) is
// exactly 1-cos
func vectorAt(t *testing.T, cos float64) valueobjects.Embedding {
	t.Helper()
	values := make([]float64, valueobjects.EmbeddingDimensions)
	values[0] = cos
	values[1] = math.Sqrt(1 - cos*cos)
	e, err := valueobjects.NewEmbedding(values)
	require.NoError(t, err)
	return e
}
