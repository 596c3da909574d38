package memory

import (
	"context"
	"strings"

	"inklings-backend/application/ports"
	"inklings-backend/domain/core/entities"
	"inklings-backend/domain/core/valueobjects"
	"inklings-backend/domain/friendship"
	domainservices "inklings-backend/domain/services"
	pkgerrors "inklings-backend/pkg/errors"
)

// Repositories is the in-memory repository bundle over one store.
// The locking flag distinguishes the public bundle, which locks per call,
// from the transaction-scoped bundle, which runs under the unit of work's
// write lock.
type Repositories struct {
	nodes       *nodeRepository
	links       *linkRepository
	tags        *tagRepository
	linkTypes   *linkTypeRepository
	friendships *friendshipRepository
}

// NewRepositories creates the public repository bundle for a store
func NewRepositories(store *Store) *Repositories {
	return newRepositories(store, true)
}

func newRepositories(store *Store, locking bool) *Repositories {
	base := repoBase{store: store, locking: locking}
	return &Repositories{
		nodes:       &nodeRepository{base},
		links:       &linkRepository{base},
		tags:        &tagRepository{base},
		linkTypes:   &linkTypeRepository{base},
		friendships: &friendshipRepository{base},
	}
}

func (r *Repositories) Nodes() ports.NodeRepository             { return r.nodes }
func (r *Repositories) Links() ports.LinkRepository             { return r.links }
func (r *Repositories) Tags() ports.TagRepository               { return r.tags }
func (r *Repositories) LinkTypes() ports.LinkTypeRepository     { return r.linkTypes }
func (r *Repositories) Friendships() ports.FriendshipRepository { return r.friendships }

type repoBase struct {
	store   *Store
	locking bool
}

func (b *repoBase) readLock() func() {
	if !b.locking {
		return func() {}
	}
	b.store.mu.RLock()
	return b.store.mu.RUnlock
}

func (b *repoBase) writeLock() func() {
	if !b.locking {
		return func() {}
	}
	b.store.mu.Lock()
	return b.store.mu.Unlock
}

// nodeRepository stores the content kinds keyed by "kind#id". Listings for
// the link and tag kinds are delegated to their stores so callers can browse
// any kind through one surface.
type nodeRepository struct {
	repoBase
}

func (r *nodeRepository) Save(_ context.Context, node entities.Node) error {
	defer r.writeLock()()
	key := node.Ref().String()
	if _, exists := r.store.nodes[key]; !exists {
		r.store.nodeOrder = append(r.store.nodeOrder, key)
	}
	r.store.nodes[key] = node
	return nil
}

func (r *nodeRepository) Get(_ context.Context, ref valueobjects.NodeReference) (entities.Node, error) {
	defer r.readLock()()
	node, ok := r.store.nodes[ref.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("node " + ref.String())
	}
	return node, nil
}

func (r *nodeRepository) ListByKind(ctx context.Context, kind valueobjects.NodeKind) ([]entities.Node, error) {
	switch kind {
	case valueobjects.KindLink:
		links, err := (&linkRepository{r.repoBase}).ListLinks(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]entities.Node, 0, len(links))
		for _, link := range links {
			out = append(out, link)
		}
		return out, nil
	case valueobjects.KindTag:
		defer r.readLock()()
		out := make([]entities.Node, 0, len(r.store.tagOrder))
		for _, id := range r.store.tagOrder {
			out = append(out, r.store.tags[id])
		}
		return out, nil
	default:
		defer r.readLock()()
		prefix := kind.String() + "#"
		out := make([]entities.Node, 0)
		for _, key := range r.store.nodeOrder {
			if strings.HasPrefix(key, prefix) {
				out = append(out, r.store.nodes[key])
			}
		}
		return out, nil
	}
}

func (r *nodeRepository) ListByOwner(ctx context.Context, kind valueobjects.NodeKind, owner valueobjects.UserID) ([]entities.Node, error) {
	all, err := r.ListByKind(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]entities.Node, 0, len(all))
	for _, node := range all {
		if node.OwnerID().Equals(owner) {
			out = append(out, node)
		}
	}
	return out, nil
}

func (r *nodeRepository) ListNodeSubjects(ctx context.Context, kind valueobjects.NodeKind) ([]domainservices.NodeSubject, error) {
	all, err := r.ListByKind(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]domainservices.NodeSubject, 0, len(all))
	for _, node := range all {
		subject := domainservices.NodeSubject{
			ID:      node.ID(),
			OwnerID: node.OwnerID(),
			Privacy: valueobjects.DefaultPrivacySetting,
		}
		if gated, ok := node.(entities.PrivacyGated); ok {
			subject.Privacy = gated.Privacy()
		}
		out = append(out, subject)
	}
	return out, nil
}

func (r *nodeRepository) Delete(_ context.Context, ref valueobjects.NodeReference) error {
	defer r.writeLock()()
	key := ref.String()
	if _, ok := r.store.nodes[key]; !ok {
		return pkgerrors.NewNotFoundError("node " + key)
	}
	delete(r.store.nodes, key)
	r.store.nodeOrder = removeKey(r.store.nodeOrder, key)
	return nil
}

type linkRepository struct {
	repoBase
}

func (r *linkRepository) Save(_ context.Context, link *entities.Link) error {
	defer r.writeLock()()
	key := link.ID().String()
	if _, exists := r.store.links[key]; !exists {
		r.store.linkOrder = append(r.store.linkOrder, key)
	}
	r.store.links[key] = link
	return nil
}

func (r *linkRepository) Get(_ context.Context, id valueobjects.NodeID) (*entities.Link, error) {
	defer r.readLock()()
	link, ok := r.store.links[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("link " + id.String())
	}
	return link, nil
}

func (r *linkRepository) ListLinks(_ context.Context) ([]*entities.Link, error) {
	defer r.readLock()()
	out := make([]*entities.Link, 0, len(r.store.linkOrder))
	for _, id := range r.store.linkOrder {
		out = append(out, r.store.links[id])
	}
	return out, nil
}

func (r *linkRepository) ListLinksTouching(_ context.Context, ref valueobjects.NodeReference) ([]*entities.Link, error) {
	defer r.readLock()()
	out := make([]*entities.Link, 0)
	for _, id := range r.store.linkOrder {
		if link := r.store.links[id]; link.Touches(ref) {
			out = append(out, link)
		}
	}
	return out, nil
}

func (r *linkRepository) FindRelation(_ context.Context, source, target valueobjects.NodeReference, linkTypeID valueobjects.NodeID) (*entities.Link, error) {
	defer r.readLock()()
	for _, id := range r.store.linkOrder {
		link := r.store.links[id]
		if link.Source().Equals(source) && link.Target().Equals(target) && link.LinkTypeID().Equals(linkTypeID) {
			return link, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("link relation")
}

func (r *linkRepository) Delete(_ context.Context, id valueobjects.NodeID) error {
	defer r.writeLock()()
	key := id.String()
	if _, ok := r.store.links[key]; !ok {
		return pkgerrors.NewNotFoundError("link " + key)
	}
	delete(r.store.links, key)
	r.store.linkOrder = removeKey(r.store.linkOrder, key)
	return nil
}

type tagRepository struct {
	repoBase
}

func (r *tagRepository) Save(_ context.Context, tag *entities.Tag) error {
	defer r.writeLock()()
	key := tag.ID().String()
	if _, exists := r.store.tags[key]; !exists {
		r.store.tagOrder = append(r.store.tagOrder, key)
	}
	r.store.tags[key] = tag
	return nil
}

func (r *tagRepository) Get(_ context.Context, id valueobjects.NodeID) (*entities.Tag, error) {
	defer r.readLock()()
	tag, ok := r.store.tags[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("tag " + id.String())
	}
	return tag, nil
}

func (r *tagRepository) GetByName(_ context.Context, owner valueobjects.UserID, name string) (*entities.Tag, error) {
	defer r.readLock()()
	normalized := entities.NormalizeTagName(name)
	for _, id := range r.store.tagOrder {
		tag := r.store.tags[id]
		if tag.OwnerID().Equals(owner) && tag.Name() == normalized {
			return tag, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("tag " + normalized)
}

func (r *tagRepository) ListByOwner(_ context.Context, owner valueobjects.UserID) ([]*entities.Tag, error) {
	defer r.readLock()()
	out := make([]*entities.Tag, 0)
	for _, id := range r.store.tagOrder {
		if tag := r.store.tags[id]; tag.OwnerID().Equals(owner) {
			out = append(out, tag)
		}
	}
	return out, nil
}

func (r *tagRepository) Delete(_ context.Context, id valueobjects.NodeID) error {
	defer r.writeLock()()
	key := id.String()
	if _, ok := r.store.tags[key]; !ok {
		return pkgerrors.NewNotFoundError("tag " + key)
	}
	delete(r.store.tags, key)
	r.store.tagOrder = removeKey(r.store.tagOrder, key)
	return nil
}

type linkTypeRepository struct {
	repoBase
}

func (r *linkTypeRepository) Save(_ context.Context, linkType *entities.LinkType) error {
	defer r.writeLock()()
	key := linkType.ID().String()
	if _, exists := r.store.linkTypes[key]; !exists {
		r.store.typeOrder = append(r.store.typeOrder, key)
	}
	r.store.linkTypes[key] = linkType
	return nil
}

func (r *linkTypeRepository) GetLinkType(_ context.Context, id valueobjects.NodeID) (*entities.LinkType, error) {
	defer r.readLock()()
	linkType, ok := r.store.linkTypes[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("link type " + id.String())
	}
	return linkType, nil
}

func (r *linkTypeRepository) GetByName(_ context.Context, owner valueobjects.UserID, name string) (*entities.LinkType, error) {
	defer r.readLock()()
	for _, id := range r.store.typeOrder {
		linkType := r.store.linkTypes[id]
		if linkType.OwnerID().Equals(owner) && linkType.Name() == name {
			return linkType, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("link type " + name)
}

func (r *linkTypeRepository) ListByOwner(_ context.Context, owner valueobjects.UserID) ([]*entities.LinkType, error) {
	defer r.readLock()()
	out := make([]*entities.LinkType, 0)
	for _, id := range r.store.typeOrder {
		if linkType := r.store.linkTypes[id]; linkType.OwnerID().Equals(owner) {
			out = append(out, linkType)
		}
	}
	return out, nil
}

func (r *linkTypeRepository) Delete(_ context.Context, id valueobjects.NodeID) error {
	defer r.writeLock()()
	key := id.String()
	if _, ok := r.store.linkTypes[key]; !ok {
		return pkgerrors.NewNotFoundError("link type " + key)
	}
	delete(r.store.linkTypes, key)
	r.store.typeOrder = removeKey(r.store.typeOrder, key)
	return nil
}

type friendshipRepository struct {
	repoBase
}

func (r *friendshipRepository) AddEdge(_ context.Context, edge friendship.Edge) error {
	defer r.writeLock()()
	r.store.edges[edgeKey(edge.Low().String(), edge.High().String())] = edge
	return nil
}

func (r *friendshipRepository) RemoveEdge(_ context.Context, a, b valueobjects.UserID) error {
	edge, err := friendship.NewEdge(a, b)
	if err != nil {
		return err
	}
	defer r.writeLock()()
	delete(r.store.edges, edgeKey(edge.Low().String(), edge.High().String()))
	return nil
}

func (r *friendshipRepository) EdgeExists(_ context.Context, a, b valueobjects.UserID) (bool, error) {
	edge, err := friendship.NewEdge(a, b)
	if err != nil {
		return false, err
	}
	defer r.readLock()()
	_, ok := r.store.edges[edgeKey(edge.Low().String(), edge.High().String())]
	return ok, nil
}

func (r *friendshipRepository) FriendsOf(_ context.Context, user valueobjects.UserID) ([]valueobjects.UserID, error) {
	defer r.readLock()()
	out := make([]valueobjects.UserID, 0)
	for _, edge := range r.store.edges {
		if other, ok := edge.Other(user); ok {
			out = append(out, other)
		}
	}
	return out, nil
}

func (r *friendshipRepository) PutRequest(_ context.Context, request friendship.Request) error {
	defer r.writeLock()()
	r.store.requests[requestKey(request.Sender().String(), request.Receiver().String())] = request
	return nil
}

func (r *friendshipRepository) DeleteRequest(_ context.Context, sender, receiver valueobjects.UserID) error {
	defer r.writeLock()()
	delete(r.store.requests, requestKey(sender.String(), receiver.String()))
	return nil
}

func (r *friendshipRepository) RequestExists(_ context.Context, sender, receiver valueobjects.UserID) (bool, error) {
	defer r.readLock()()
	_, ok := r.store.requests[requestKey(sender.String(), receiver.String())]
	return ok, nil
}

func (r *friendshipRepository) ProfileOf(_ context.Context, user valueobjects.UserID) (friendship.Profile, error) {
	defer r.readLock()()
	edges := make([]friendship.Edge, 0)
	for _, edge := range r.store.edges {
		if edge.Involves(user) {
			edges = append(edges, edge)
		}
	}
	requests := make([]friendship.Request, 0)
	for _, request := range r.store.requests {
		if request.Sender().Equals(user) || request.Receiver().Equals(user) {
			requests = append(requests, request)
		}
	}
	return friendship.NewProfile(user, edges, requests), nil
}
