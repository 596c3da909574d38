package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"inklings-backend/application/ports"
	domaincfg "inklings-backend/domain/config"
	"inklings-backend/domain/core/entities"
	"inklings-backend/domain/core/valueobjects"
	"inklings-backend/domain/events"
	domainservices "inklings-backend/domain/services"
	pkgerrors "inklings-backend/pkg/errors"
	"inklings-backend/pkg/observability"
	"inklings-backend/pkg/utils"
)

// CreateLinkCommand carries the input for connecting two nodes.
// Endpoint references use the "kind#id" wire form.
type CreateLinkCommand struct {
	OwnerID    string `validate:"required"`
	SourceRef  string `validate:"required"`
	TargetRef  string `validate:"required"`
	LinkTypeID string `validate:"required,uuid"`
	Privacy    string `validate:"omitempty,oneof=private friends friends_of_friends"`
}

// CreateLinkTypeCommand carries the input for defining a relation kind
type CreateLinkTypeCommand struct {
	OwnerID     string `validate:"required"`
	Name        string `validate:"required,max=255"`
	ReverseName string `validate:"max=255"`
}

// LinkService owns the typed link graph: link and link-type creation under
// the uniqueness and endpoint-existence invariants, plus the graph-browsing
// operations delegated to the domain service.
type LinkService struct {
	uow        ports.UnitOfWork
	repos      ports.Repositories
	graph      *domainservices.LinkGraphService
	visibility *domainservices.VisibilityService
	resolver   domainservices.NodeResolver
	publisher  ports.EventPublisher
	cfg        *domaincfg.DomainConfig
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewLinkService creates the link service
func NewLinkService(
	uow ports.UnitOfWork,
	repos ports.Repositories,
	graph *domainservices.LinkGraphService,
	visibility *domainservices.VisibilityService,
	resolver domainservices.NodeResolver,
	publisher ports.EventPublisher,
	cfg *domaincfg.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *LinkService {
	return &LinkService{
		uow:        uow,
		repos:      repos,
		graph:      graph,
		visibility: visibility,
		resolver:   resolver,
		publisher:  publisher,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}
}

// CreateLink connects two nodes with a typed directed edge. Both endpoints
// must resolve, the (source, target, type) triple must be unique, and the
// existence checks run in the same transaction as the write so a concurrent
// delete cannot leave a dangling link.
func (s *LinkService) CreateLink(ctx context.Context, cmd CreateLinkCommand) (link *entities.Link, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("link.create", start, err) }()

	if err = utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	owner, err := valueobjects.NewUserID(cmd.OwnerID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	source, err := valueobjects.ParseNodeReference(cmd.SourceRef)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	target, err := valueobjects.ParseNodeReference(cmd.TargetRef)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	linkTypeID, err := valueobjects.NewNodeIDFromString(cmd.LinkTypeID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	privacy, err := valueobjects.NewPrivacySetting(cmd.Privacy)
	if err != nil {
		return nil, err
	}

	if !s.cfg.AllowSelfLinks && source.Equals(target) {
		return nil, pkgerrors.NewValidationError("a node cannot be linked to itself")
	}

	link, err = entities.NewLink(owner, source, target, linkTypeID, privacy)
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		linkType, err := tx.LinkTypes().GetLinkType(ctx, linkTypeID)
		if err != nil {
			return err
		}
		if !linkType.OwnerID().Equals(owner) {
			return pkgerrors.NewForbiddenError("link type belongs to another user")
		}

		for _, endpoint := range []valueobjects.NodeReference{source, target} {
			if err := s.endpointExists(ctx, tx, endpoint); err != nil {
				return err
			}
		}

		existing, err := tx.Links().FindRelation(ctx, source, target, linkTypeID)
		if err != nil && !pkgerrors.IsNotFound(err) {
			return err
		}
		if existing != nil {
			return pkgerrors.NewDuplicateLinkError()
		}

		return tx.Links().Save(ctx, link)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewLinkCreated(link.ID(), source, target, linkTypeID, owner))
	return link, nil
}

// DeleteLink removes a link the caller owns
func (s *LinkService) DeleteLink(ctx context.Context, owner valueobjects.UserID, id valueobjects.NodeID) (err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("link.delete", start, err) }()

	err = s.uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		link, err := tx.Links().Get(ctx, id)
		if err != nil {
			return err
		}
		if !link.OwnerID().Equals(owner) {
			return pkgerrors.NewForbiddenError("only the owner can delete a link")
		}
		return tx.Links().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.NewLinkDeleted(id, owner))
	return nil
}

// CreateLinkType defines an owner-scoped relation kind. The forward name is
// unique per owner.
func (s *LinkService) CreateLinkType(ctx context.Context, cmd CreateLinkTypeCommand) (linkType *entities.LinkType, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("link.create_type", start, err) }()

	if err = utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	owner, err := valueobjects.NewUserID(cmd.OwnerID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	linkType, err = entities.NewLinkType(owner, cmd.Name, cmd.ReverseName)
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		existing, err := tx.LinkTypes().GetByName(ctx, owner, linkType.Name())
		if err != nil && !pkgerrors.IsNotFound(err) {
			return err
		}
		if existing != nil {
			return pkgerrors.NewConflictError("link type " + linkType.Name() + " already exists for this user")
		}
		return tx.LinkTypes().Save(ctx, linkType)
	})
	if err != nil {
		return nil, err
	}
	return linkType, nil
}

// ListLinkTypes returns a user's relation kinds
func (s *LinkService) ListLinkTypes(ctx context.Context, owner valueobjects.UserID) ([]*entities.LinkType, error) {
	return s.repos.LinkTypes().ListByOwner(ctx, owner)
}

// LinksOf returns every link touching a node the viewer may see,
// regardless of direction
func (s *LinkService) LinksOf(
	ctx context.Context,
	viewer valueobjects.UserID,
	level valueobjects.PrivacyLevel,
	ref valueobjects.NodeReference,
) ([]*entities.Link, error) {
	node, err := s.viewableNode(ctx, viewer, level, ref)
	if err != nil {
		return nil, err
	}
	return s.graph.AllLinks(ctx, node)
}

// LinkedNodesOf returns the opposite endpoint of every link touching the node
func (s *LinkService) LinkedNodesOf(
	ctx context.Context,
	viewer valueobjects.UserID,
	level valueobjects.PrivacyLevel,
	ref valueobjects.NodeReference,
) ([]entities.Node, error) {
	node, err := s.viewableNode(ctx, viewer, level, ref)
	if err != nil {
		return nil, err
	}
	return s.graph.AllLinkedNodes(ctx, node)
}

// LinkGroupsOf returns the node's neighbors grouped by relation kind and
// direction, labelled with the reverse name for incoming groups
func (s *LinkService) LinkGroupsOf(
	ctx context.Context,
	viewer valueobjects.UserID,
	level valueobjects.PrivacyLevel,
	ref valueobjects.NodeReference,
) ([]domainservices.LinkGroup, error) {
	node, err := s.viewableNode(ctx, viewer, level, ref)
	if err != nil {
		return nil, err
	}
	return s.graph.LinkGroups(ctx, node)
}

// ConnectionCandidates lists the viewer's visible nodes of a kind that are
// not yet related to the node, for "connect to" suggestions
func (s *LinkService) ConnectionCandidates(
	ctx context.Context,
	viewer valueobjects.UserID,
	level valueobjects.PrivacyLevel,
	ref valueobjects.NodeReference,
	candidateKind valueobjects.NodeKind,
) ([]entities.Node, error) {
	node, err := s.viewableNode(ctx, viewer, level, ref)
	if err != nil {
		return nil, err
	}
	exclusion, err := s.graph.RelatedNodesExclusion(ctx, node, candidateKind)
	if err != nil {
		return nil, err
	}

	candidates, err := s.repos.Nodes().ListByKind(ctx, candidateKind)
	if err != nil {
		return nil, err
	}

	out := make([]entities.Node, 0, len(candidates))
	for _, candidate := range candidates {
		if exclusion.IsSatisfiedBy(candidate) {
			continue
		}
		viewable, err := s.visibility.IsViewableBy(ctx, candidate, viewer, level)
		if err != nil {
			return nil, err
		}
		if viewable {
			out = append(out, candidate)
		}
	}
	return out, nil
}

// viewableNode resolves a reference and enforces visibility, reading a
// hidden node as not found
func (s *LinkService) viewableNode(
	ctx context.Context,
	viewer valueobjects.UserID,
	level valueobjects.PrivacyLevel,
	ref valueobjects.NodeReference,
) (entities.Node, error) {
	node, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	viewable, err := s.visibility.IsViewableBy(ctx, node, viewer, level)
	if err != nil {
		return nil, err
	}
	if !viewable {
		return nil, pkgerrors.NewNotFoundError("node " + ref.String())
	}
	return node, nil
}

// endpointExists verifies that a link endpoint resolves to a stored node
func (s *LinkService) endpointExists(ctx context.Context, tx ports.Repositories, ref valueobjects.NodeReference) error {
	var err error
	switch ref.Kind() {
	case valueobjects.KindLink:
		_, err = tx.Links().Get(ctx, ref.ID())
	case valueobjects.KindTag:
		_, err = tx.Tags().Get(ctx, ref.ID())
	default:
		_, err = tx.Nodes().Get(ctx, ref)
	}
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return pkgerrors.NewDanglingReferenceError(ref.String())
		}
		return err
	}
	return nil
}

func (s *LinkService) publish(ctx context.Context, event events.DomainEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.EventFailures.Inc()
		s.logger.Warn("failed to publish link event",
			zap.String("event", event.GetEventType()),
			zap.Error(err),
		)
		return
	}
	s.metrics.EventsPublished.Inc()
}
