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
	"inklings-backend/domain/specifications"
	pkgerrors "inklings-backend/pkg/errors"
	"inklings-backend/pkg/observability"
	"inklings-backend/pkg/utils"
)

// CreateMemoCommand carries the input for creating a memo
type CreateMemoCommand struct {
	OwnerID string   `validate:"required"`
	Title   string   `validate:"required,max=255"`
	Body    string   `validate:"max=65536"`
	Summary string   `validate:"max=1024"`
	Privacy string   `validate:"omitempty,oneof=private friends friends_of_friends"`
	Tags    []string `validate:"max=50,dive,required"`
}

// CreateReferenceCommand carries the input for creating a reference
type CreateReferenceCommand struct {
	OwnerID         string   `validate:"required"`
	Title           string   `validate:"required,max=255"`
	Body            string   `validate:"max=65536"`
	Summary         string   `validate:"max=1024"`
	URL             string   `validate:"omitempty,url"`
	SourceName      string   `validate:"max=255"`
	Authors         string   `validate:"max=1024"`
	PublicationDate *time.Time
	Privacy         string   `validate:"omitempty,oneof=private friends friends_of_friends"`
	Tags            []string `validate:"max=50,dive,required"`
}

// CreateInklingCommand carries the input for creating an inkling
type CreateInklingCommand struct {
	OwnerID string   `validate:"required"`
	Title   string   `validate:"required,max=255"`
	Body    string   `validate:"max=65536"`
	Privacy string   `validate:"omitempty,oneof=private friends friends_of_friends"`
	Tags    []string `validate:"max=50,dive,required"`
}

// NodeService owns the content node lifecycle: creation with embeddings and
// tag associations, content and privacy updates, retrieval under the
// visibility policy, and deletion together with touching links.
type NodeService struct {
	uow        ports.UnitOfWork
	repos      ports.Repositories
	embedder   ports.EmbeddingProvider
	visibility *domainservices.VisibilityService
	publisher  ports.EventPublisher
	cfg        *domaincfg.DomainConfig
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewNodeService creates the node service
func NewNodeService(
	uow ports.UnitOfWork,
	repos ports.Repositories,
	embedder ports.EmbeddingProvider,
	visibility *domainservices.VisibilityService,
	publisher ports.EventPublisher,
	cfg *domaincfg.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *NodeService {
	return &NodeService{
		uow:        uow,
		repos:      repos,
		embedder:   embedder,
		visibility: visibility,
		publisher:  publisher,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}
}

// CreateMemo creates a memo with its embedding and tag associations
func (s *NodeService) CreateMemo(ctx context.Context, cmd CreateMemoCommand) (memo *entities.Memo, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("node.create_memo", start, err) }()

	if err = utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	owner, content, privacy, err := s.commonFields(cmd.OwnerID, cmd.Title, cmd.Body, cmd.Privacy)
	if err != nil {
		return nil, err
	}
	summary, err := valueobjects.NewSummary(cmd.Summary)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	memo, err = entities.NewMemo(owner, content, summary, privacy)
	if err != nil {
		return nil, err
	}
	s.embed(ctx, memo, content)

	if err = s.saveWithTags(ctx, memo, owner, cmd.Tags); err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewNodeCreated(memo.Ref(), owner, normalizeTagNames(cmd.Tags)))
	return memo, nil
}

// CreateReference creates a reference with provenance metadata
func (s *NodeService) CreateReference(ctx context.Context, cmd CreateReferenceCommand) (ref *entities.Reference, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("node.create_reference", start, err) }()

	if err = utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	owner, content, privacy, err := s.commonFields(cmd.OwnerID, cmd.Title, cmd.Body, cmd.Privacy)
	if err != nil {
		return nil, err
	}
	summary, err := valueobjects.NewSummary(cmd.Summary)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	source := entities.SourceInfo{
		URL:             cmd.URL,
		SourceName:      cmd.SourceName,
		Authors:         cmd.Authors,
		PublicationDate: cmd.PublicationDate,
	}

	ref, err = entities.NewReference(owner, content, summary, source, privacy)
	if err != nil {
		return nil, err
	}
	s.embed(ctx, ref, content)

	if err = s.saveWithTags(ctx, ref, owner, cmd.Tags); err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewNodeCreated(ref.Ref(), owner, normalizeTagNames(cmd.Tags)))
	return ref, nil
}

// CreateInkling creates an inkling
func (s *NodeService) CreateInkling(ctx context.Context, cmd CreateInklingCommand) (inkling *entities.Inkling, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("node.create_inkling", start, err) }()

	if err = utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	owner, content, privacy, err := s.commonFields(cmd.OwnerID, cmd.Title, cmd.Body, cmd.Privacy)
	if err != nil {
		return nil, err
	}

	inkling, err = entities.NewInkling(owner, content, privacy)
	if err != nil {
		return nil, err
	}
	s.embed(ctx, inkling, content)

	if err = s.saveWithTags(ctx, inkling, owner, cmd.Tags); err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewNodeCreated(inkling.Ref(), owner, normalizeTagNames(cmd.Tags)))
	return inkling, nil
}

// GetNode retrieves a node for a viewer at a privacy level. A node the
// viewer may not see reads as not found, so existence does not leak.
func (s *NodeService) GetNode(
	ctx context.Context,
	viewer valueobjects.UserID,
	level valueobjects.PrivacyLevel,
	ref valueobjects.NodeReference,
) (entities.Node, error) {
	node, err := s.resolve(ctx, s.repos, ref)
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

// ListVisibleNodes returns every node of a kind the viewer may see at the
// level. At LevelOwn this is exactly the viewer's own nodes.
func (s *NodeService) ListVisibleNodes(
	ctx context.Context,
	viewer valueobjects.UserID,
	level valueobjects.PrivacyLevel,
	kind valueobjects.NodeKind,
) ([]entities.Node, error) {
	if kind == valueobjects.KindTag {
		// Tags carry no privacy tiers; every level collapses to owner-only.
		tags, err := s.repos.Tags().ListByOwner(ctx, viewer)
		if err != nil {
			return nil, err
		}
		out := make([]entities.Node, 0, len(tags))
		for _, tag := range tags {
			out = append(out, tag)
		}
		return out, nil
	}

	all, err := s.repos.Nodes().ListByKind(ctx, kind)
	if err != nil {
		return nil, err
	}

	if kind == valueobjects.KindLink {
		filter, err := s.visibility.LinkFilterFor(ctx, viewer, level)
		if err != nil {
			return nil, err
		}
		out := make([]entities.Node, 0, len(all))
		for _, node := range all {
			if link, ok := node.(*entities.Link); ok && filter.IsSatisfiedBy(link) {
				out = append(out, link)
			}
		}
		return out, nil
	}

	filter, err := s.visibility.FilterFor(ctx, viewer, level)
	if err != nil {
		return nil, err
	}
	out := make([]entities.Node, 0, len(all))
	for _, node := range all {
		gated, ok := node.(entities.PrivacyGated)
		if !ok {
			continue
		}
		if filter.IsSatisfiedBy(specifications.Subject{OwnerID: gated.OwnerID(), Privacy: gated.Privacy()}) {
			out = append(out, node)
		}
	}
	return out, nil
}

// UpdateContent replaces the title and body of a content node the caller owns
func (s *NodeService) UpdateContent(
	ctx context.Context,
	owner valueobjects.UserID,
	ref valueobjects.NodeReference,
	title, body string,
) (err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("node.update_content", start, err) }()

	content, err := valueobjects.NewNodeContent(title, body)
	if err != nil {
		return err
	}

	err = s.uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		node, err := s.resolve(ctx, tx, ref)
		if err != nil {
			return err
		}
		if !node.OwnerID().Equals(owner) {
			return pkgerrors.NewForbiddenError("only the owner can edit a node")
		}
		editable, ok := node.(interface {
			UpdateContent(valueobjects.NodeContent) error
		})
		if !ok {
			return pkgerrors.NewValidationError("nodes of kind " + ref.Kind().String() + " carry no content")
		}
		if err := editable.UpdateContent(content); err != nil {
			return err
		}
		if embeddable, ok := node.(interface {
			SetEmbedding(valueobjects.Embedding)
		}); ok {
			s.embed(ctx, embeddable, content)
		}
		return s.save(ctx, tx, node)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.NewNodeUpdated(ref, owner))
	return nil
}

// SetPrivacy changes the sharing tier of a node the caller owns
func (s *NodeService) SetPrivacy(
	ctx context.Context,
	owner valueobjects.UserID,
	ref valueobjects.NodeReference,
	privacy string,
) (err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("node.set_privacy", start, err) }()

	setting, err := valueobjects.NewPrivacySetting(privacy)
	if err != nil {
		return err
	}

	err = s.uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		node, err := s.resolve(ctx, tx, ref)
		if err != nil {
			return err
		}
		if !node.OwnerID().Equals(owner) {
			return pkgerrors.NewForbiddenError("only the owner can change a node's privacy")
		}
		gated, ok := node.(interface {
			SetPrivacy(valueobjects.PrivacySetting) error
		})
		if !ok {
			return pkgerrors.NewValidationError("nodes of kind " + ref.Kind().String() + " carry no privacy setting")
		}
		if err := gated.SetPrivacy(setting); err != nil {
			return err
		}
		return s.save(ctx, tx, node)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.NewNodeUpdated(ref, owner))
	return nil
}

// DeleteNode removes a node the caller owns together with every link that
// has it as an endpoint, in one transaction
func (s *NodeService) DeleteNode(ctx context.Context, owner valueobjects.UserID, ref valueobjects.NodeReference) (err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("node.delete", start, err) }()

	err = s.uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		node, err := s.resolve(ctx, tx, ref)
		if err != nil {
			return err
		}
		if !node.OwnerID().Equals(owner) {
			return pkgerrors.NewForbiddenError("only the owner can delete a node")
		}

		// Removing a link can strand a link whose endpoint it was, so the
		// cascade follows link-on-link chains to a fixpoint.
		queue := []valueobjects.NodeReference{ref}
		for len(queue) > 0 {
			head := queue[0]
			queue = queue[1:]
			touching, err := tx.Links().ListLinksTouching(ctx, head)
			if err != nil {
				return err
			}
			for _, link := range touching {
				if err := tx.Links().Delete(ctx, link.ID()); err != nil {
					return err
				}
				queue = append(queue, link.Ref())
			}
		}
		return s.delete(ctx, tx, node)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.NewNodeDeleted(ref, owner))
	return nil
}

// CreateTag creates an owner-scoped tag. Raw names that normalize to an
// existing tag's name conflict.
func (s *NodeService) CreateTag(ctx context.Context, owner valueobjects.UserID, name string) (tag *entities.Tag, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("node.create_tag", start, err) }()

	tag, err = entities.NewTag(owner, name)
	if err != nil {
		return nil, err
	}
	s.embedTag(ctx, tag)

	err = s.uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		existing, err := tx.Tags().GetByName(ctx, owner, tag.Name())
		if err != nil && !pkgerrors.IsNotFound(err) {
			return err
		}
		if existing != nil {
			return pkgerrors.NewDuplicateTagError(tag.Name())
		}
		return tx.Tags().Save(ctx, tag)
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// ListTags returns a user's tags
func (s *NodeService) ListTags(ctx context.Context, owner valueobjects.UserID) ([]*entities.Tag, error) {
	return s.repos.Tags().ListByOwner(ctx, owner)
}

// TagNode associates a tag with a node the caller owns, creating the tag
// from the raw name if needed
func (s *NodeService) TagNode(
	ctx context.Context,
	owner valueobjects.UserID,
	ref valueobjects.NodeReference,
	rawName string,
) (err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("node.tag", start, err) }()

	err = s.uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		node, err := s.resolve(ctx, tx, ref)
		if err != nil {
			return err
		}
		if !node.OwnerID().Equals(owner) {
			return pkgerrors.NewForbiddenError("only the owner can tag a node")
		}
		taggable, ok := node.(interface {
			AddTagID(valueobjects.NodeID)
			TagIDs() []valueobjects.NodeID
		})
		if !ok {
			return pkgerrors.NewValidationError("nodes of kind " + ref.Kind().String() + " cannot be tagged")
		}
		if len(taggable.TagIDs()) >= s.cfg.MaxTagsPerNode {
			return pkgerrors.NewValidationError("node has reached the tag limit")
		}

		tag, err := s.getOrCreateTag(ctx, tx, owner, rawName)
		if err != nil {
			return err
		}
		taggable.AddTagID(tag.ID())
		return s.save(ctx, tx, node)
	})
	return err
}

// commonFields converts the raw command fields shared by every content kind
func (s *NodeService) commonFields(ownerID, title, body, privacy string) (valueobjects.UserID, valueobjects.NodeContent, valueobjects.PrivacySetting, error) {
	owner, err := valueobjects.NewUserID(ownerID)
	if err != nil {
		return valueobjects.UserID{}, valueobjects.NodeContent{}, "", pkgerrors.NewValidationError(err.Error())
	}
	content, err := valueobjects.NewNodeContent(title, body)
	if err != nil {
		return valueobjects.UserID{}, valueobjects.NodeContent{}, "", err
	}
	setting, err := valueobjects.NewPrivacySetting(privacy)
	if err != nil {
		return valueobjects.UserID{}, valueobjects.NodeContent{}, "", err
	}
	return owner, content, setting, nil
}

// embed computes and attaches the embedding for a node's content. Failure is
// not fatal: the node is stored without a vector and stays out of similarity
// results until re-embedded.
func (s *NodeService) embed(ctx context.Context, node interface {
	SetEmbedding(valueobjects.Embedding)
}, content valueobjects.NodeContent) {
	text := content.Title()
	if content.Body() != "" {
		text += "\n" + content.Body()
	}
	vector, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		s.logger.Warn("embedding provider unavailable, storing node without vector", zap.Error(err))
		return
	}
	node.SetEmbedding(vector)
}

func (s *NodeService) embedTag(ctx context.Context, tag *entities.Tag) {
	vector, err := s.embedder.EmbedText(ctx, tag.Name())
	if err != nil {
		s.logger.Warn("embedding provider unavailable, storing tag without vector", zap.Error(err))
		return
	}
	tag.SetEmbedding(vector)
}

// saveWithTags stores a node and its tag associations atomically, creating
// missing tags from raw names
func (s *NodeService) saveWithTags(ctx context.Context, node entities.Node, owner valueobjects.UserID, rawNames []string) error {
	return s.uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		if len(rawNames) > s.cfg.MaxTagsPerNode {
			return pkgerrors.NewValidationError("too many tags for one node")
		}
		if taggable, ok := node.(interface {
			AddTagID(valueobjects.NodeID)
		}); ok {
			for _, raw := range rawNames {
				tag, err := s.getOrCreateTag(ctx, tx, owner, raw)
				if err != nil {
					return err
				}
				taggable.AddTagID(tag.ID())
			}
		}
		return s.save(ctx, tx, node)
	})
}

// getOrCreateTag finds the owner's tag for a raw name, creating it on first use
func (s *NodeService) getOrCreateTag(ctx context.Context, tx ports.Repositories, owner valueobjects.UserID, rawName string) (*entities.Tag, error) {
	normalized := entities.NormalizeTagName(rawName)
	if normalized == "" {
		return nil, pkgerrors.NewValidationError("tag name cannot be empty")
	}
	existing, err := tx.Tags().GetByName(ctx, owner, normalized)
	if err == nil {
		return existing, nil
	}
	if !pkgerrors.IsNotFound(err) {
		return nil, err
	}
	tag, err := entities.NewTag(owner, rawName)
	if err != nil {
		return nil, err
	}
	s.embedTag(ctx, tag)
	if err := tx.Tags().Save(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// resolve dispatches a reference to the repository that stores its kind
func (s *NodeService) resolve(ctx context.Context, tx ports.Repositories, ref valueobjects.NodeReference) (entities.Node, error) {
	switch ref.Kind() {
	case valueobjects.KindLink:
		link, err := tx.Links().Get(ctx, ref.ID())
		if err != nil {
			return nil, err
		}
		return link, nil
	case valueobjects.KindTag:
		tag, err := tx.Tags().Get(ctx, ref.ID())
		if err != nil {
			return nil, err
		}
		return tag, nil
	default:
		return tx.Nodes().Get(ctx, ref)
	}
}

func (s *NodeService) save(ctx context.Context, tx ports.Repositories, node entities.Node) error {
	switch n := node.(type) {
	case *entities.Link:
		return tx.Links().Save(ctx, n)
	case *entities.Tag:
		return tx.Tags().Save(ctx, n)
	default:
		return tx.Nodes().Save(ctx, node)
	}
}

func (s *NodeService) delete(ctx context.Context, tx ports.Repositories, node entities.Node) error {
	switch n := node.(type) {
	case *entities.Link:
		return tx.Links().Delete(ctx, n.ID())
	case *entities.Tag:
		return tx.Tags().Delete(ctx, n.ID())
	default:
		return tx.Nodes().Delete(ctx, node.Ref())
	}
}

func (s *NodeService) publish(ctx context.Context, event events.DomainEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.EventFailures.Inc()
		s.logger.Warn("failed to publish node event",
			zap.String("event", event.GetEventType()),
			zap.Error(err),
		)
		return
	}
	s.metrics.EventsPublished.Inc()
}

func normalizeTagNames(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, name := range raw {
		out = append(out, entities.NormalizeTagName(name))
	}
	return out
}
