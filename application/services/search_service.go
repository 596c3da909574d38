package services

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"inklings-backend/application/ports"
	domaincfg "inklings-backend/domain/config"
	"inklings-backend/domain/core/entities"
	"inklings-backend/domain/core/valueobjects"
	domainservices "inklings-backend/domain/services"
	"inklings-backend/domain/specifications"
	pkgerrors "inklings-backend/pkg/errors"
	"inklings-backend/pkg/observability"
)

// TuningSource supplies the current search tuning. The config watcher swaps
// values at runtime, so the service reads through it on every query.
type TuningSource interface {
	Current() domaincfg.DomainConfig
}

// StaticTuning is a TuningSource with fixed values
type StaticTuning struct {
	Config domaincfg.DomainConfig
}

// Current returns the fixed configuration
func (s StaticTuning) Current() domaincfg.DomainConfig {
	return s.Config
}

// SimilarityQuery describes one similarity search
type SimilarityQuery struct {
	// Viewer and Level gate which candidates may appear
	Viewer valueobjects.UserID
	Level  valueobjects.PrivacyLevel

	// Target is the vector to search around
	Target valueobjects.Embedding

	// Kinds restricts the candidate kinds; empty means every kind
	Kinds []valueobjects.NodeKind

	// ExcludeRelatedTo drops candidates already related to this node,
	// plus the node itself
	ExcludeRelatedTo *valueobjects.NodeReference

	// Limit caps the result count; zero means the configured default
	Limit int
}

// SimilarityResult is one search hit with its cosine distance to the target
type SimilarityResult struct {
	Node     entities.Node
	Distance float64
}

// SearchService runs embedding similarity queries under the visibility
// policy: scan candidates, keep the ones the viewer may see whose distance
// beats the threshold, and return them nearest first.
type SearchService struct {
	repos      ports.Repositories
	embedder   ports.EmbeddingProvider
	visibility *domainservices.VisibilityService
	graph      *domainservices.LinkGraphService
	resolver   domainservices.NodeResolver
	tuning     TuningSource
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewSearchService creates the search service
func NewSearchService(
	repos ports.Repositories,
	embedder ports.EmbeddingProvider,
	visibility *domainservices.VisibilityService,
	graph *domainservices.LinkGraphService,
	resolver domainservices.NodeResolver,
	tuning TuningSource,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *SearchService {
	return &SearchService{
		repos:      repos,
		embedder:   embedder,
		visibility: visibility,
		graph:      graph,
		resolver:   resolver,
		tuning:     tuning,
		metrics:    metrics,
		logger:     logger,
	}
}

// QuerySimilar returns the viewer's visible nodes whose embedding lies
// strictly within the distance threshold of the target, sorted by distance
// and then by id for a stable order, truncated to the limit.
func (s *SearchService) QuerySimilar(ctx context.Context, query SimilarityQuery) (results []SimilarityResult, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("search.query_similar", start, err) }()

	if _, err = valueobjects.ParsePrivacyLevel(query.Level.String()); err != nil {
		return nil, err
	}
	if query.Target.IsZero() {
		return nil, pkgerrors.NewValidationError("similarity query requires a target embedding")
	}

	cfg := s.tuning.Current()
	limit := query.Limit
	if limit <= 0 {
		limit = cfg.DefaultSearchLimit
	}
	if limit > cfg.MaxSearchLimit {
		limit = cfg.MaxSearchLimit
	}

	kinds := query.Kinds
	if len(kinds) == 0 {
		kinds = append(append([]valueobjects.NodeKind{}, valueobjects.ContentKinds...),
			valueobjects.KindLink, valueobjects.KindTag)
	}

	exclusions, err := s.exclusionFilters(ctx, query, kinds)
	if err != nil {
		return nil, err
	}

	scanned := 0
	for _, kind := range kinds {
		candidates, err := s.candidatesOfKind(ctx, query.Viewer, query.Level, kind)
		if err != nil {
			return nil, err
		}
		for _, candidate := range candidates {
			scanned++
			if spec, ok := exclusions[kind]; ok && spec.IsSatisfiedBy(candidate) {
				continue
			}
			embeddable, ok := candidate.(entities.Embeddable)
			if !ok || embeddable.Embedding().IsZero() {
				continue
			}
			distance, err := query.Target.CosineDistance(embeddable.Embedding())
			if err != nil {
				return nil, err
			}
			if distance >= cfg.SimilarityThreshold {
				continue
			}
			results = append(results, SimilarityResult{Node: candidate, Distance: distance})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Node.ID().String() < results[j].Node.ID().String()
	})
	if len(results) > limit {
		results = results[:limit]
	}

	s.metrics.SearchCandidates.Observe(float64(scanned))
	s.metrics.SearchResults.Observe(float64(len(results)))
	s.logger.Debug("similarity query complete",
		zap.String("viewer", query.Viewer.String()),
		zap.String("level", query.Level.String()),
		zap.Int("scanned", scanned),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// QuerySimilarToNode searches around an existing node's embedding, excluding
// the node itself and everything already related to it
func (s *SearchService) QuerySimilarToNode(
	ctx context.Context,
	viewer valueobjects.UserID,
	level valueobjects.PrivacyLevel,
	ref valueobjects.NodeReference,
	kinds []valueobjects.NodeKind,
	limit int,
) ([]SimilarityResult, error) {
	node, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	embeddable, ok := node.(entities.Embeddable)
	if !ok || embeddable.Embedding().IsZero() {
		return nil, pkgerrors.NewValidationError("node " + ref.String() + " carries no embedding")
	}
	return s.QuerySimilar(ctx, SimilarityQuery{
		Viewer:           viewer,
		Level:            level,
		Target:           embeddable.Embedding(),
		Kinds:            kinds,
		ExcludeRelatedTo: &ref,
		Limit:            limit,
	})
}

// QuerySimilarToText embeds a free-text query and searches around it
func (s *SearchService) QuerySimilarToText(
	ctx context.Context,
	viewer valueobjects.UserID,
	level valueobjects.PrivacyLevel,
	text string,
	kinds []valueobjects.NodeKind,
	limit int,
) ([]SimilarityResult, error) {
	if text == "" {
		return nil, pkgerrors.NewValidationError("query text cannot be empty")
	}
	target, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.QuerySimilar(ctx, SimilarityQuery{
		Viewer: viewer,
		Level:  level,
		Target: target,
		Kinds:  kinds,
		Limit:  limit,
	})
}

// candidatesOfKind lists the nodes of one kind the viewer may see.
// Tags have no privacy tiers and are always owner-only; links go through the
// bulk link predicate with its endpoint conjunction.
func (s *SearchService) candidatesOfKind(
	ctx context.Context,
	viewer valueobjects.UserID,
	level valueobjects.PrivacyLevel,
	kind valueobjects.NodeKind,
) ([]entities.Node, error) {
	switch kind {
	case valueobjects.KindTag:
		tags, err := s.repos.Tags().ListByOwner(ctx, viewer)
		if err != nil {
			return nil, err
		}
		out := make([]entities.Node, 0, len(tags))
		for _, tag := range tags {
			out = append(out, tag)
		}
		return out, nil

	case valueobjects.KindLink:
		filter, err := s.visibility.LinkFilterFor(ctx, viewer, level)
		if err != nil {
			return nil, err
		}
		links, err := s.repos.Links().ListLinks(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]entities.Node, 0, len(links))
		for _, link := range links {
			if filter.IsSatisfiedBy(link) {
				out = append(out, link)
			}
		}
		return out, nil

	default:
		filter, err := s.visibility.FilterFor(ctx, viewer, level)
		if err != nil {
			return nil, err
		}
		all, err := s.repos.Nodes().ListByKind(ctx, kind)
		if err != nil {
			return nil, err
		}
		out := make([]entities.Node, 0, len(all))
		for _, node := range all {
			gated, ok := node.(entities.PrivacyGated)
			if !ok {
				continue
			}
			subject := specifications.Subject{OwnerID: gated.OwnerID(), Privacy: gated.Privacy()}
			if filter.IsSatisfiedBy(subject) {
				out = append(out, node)
			}
		}
		return out, nil
	}
}

// exclusionFilters builds, per candidate kind, the already-related exclusion
// predicate around the query's anchor node
func (s *SearchService) exclusionFilters(
	ctx context.Context,
	query SimilarityQuery,
	kinds []valueobjects.NodeKind,
) (map[valueobjects.NodeKind]specifications.Specification[entities.Node], error) {
	if query.ExcludeRelatedTo == nil {
		return nil, nil
	}
	anchor, err := s.resolver.Resolve(ctx, *query.ExcludeRelatedTo)
	if err != nil {
		return nil, err
	}
	out := make(map[valueobjects.NodeKind]specifications.Specification[entities.Node], len(kinds))
	for _, kind := range kinds {
		spec, err := s.graph.RelatedNodesExclusion(ctx, anchor, kind)
		if err != nil {
			return nil, err
		}
		out[kind] = spec
	}
	return out, nil
}
