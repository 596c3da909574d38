package dynamodb

import (
	"fmt"
	"time"

	"inklings-backend/domain/core/entities"
	"inklings-backend/domain/core/valueobjects"
	"inklings-backend/domain/friendship"
	pkgerrors "inklings-backend/pkg/errors"
)

// Key prefixes for the single-table layout
const (
	prefixNode     = "NODE#"
	prefixLink     = "LINK#"
	prefixTag      = "TAG#"
	prefixLinkType = "LTYPE#"
	prefixEndpoint = "ENDPOINT#"
	prefixFriend   = "FRIEND#"
	prefixRequest  = "USERREQ#"
	prefixKind     = "KIND#"
	prefixOwner    = "OWNER#"
	prefixRelation = "REL#"
	skMeta         = "META"
)

// nodeRecord is the storage shape of every content kind. One record type
// covers memo, reference and inkling; the kind attribute picks the
// reconstruction path.
type nodeRecord struct {
	PK     string `dynamodbav:"pk"`
	SK     string `dynamodbav:"sk"`
	GSI1PK string `dynamodbav:"gsi1pk"`
	GSI1SK string `dynamodbav:"gsi1sk"`
	GSI2PK string `dynamodbav:"gsi2pk"`
	GSI2SK string `dynamodbav:"gsi2sk"`

	Kind            string     `dynamodbav:"kind"`
	ID              string     `dynamodbav:"id"`
	OwnerID         string     `dynamodbav:"owner_id"`
	Privacy         string     `dynamodbav:"privacy"`
	Title           string     `dynamodbav:"title"`
	Body            string     `dynamodbav:"body,omitempty"`
	Summary         string     `dynamodbav:"summary,omitempty"`
	URL             string     `dynamodbav:"url,omitempty"`
	SourceName      string     `dynamodbav:"source_name,omitempty"`
	Authors         string     `dynamodbav:"authors,omitempty"`
	PublicationDate *time.Time `dynamodbav:"publication_date,omitempty"`
	Embedding       []float64  `dynamodbav:"embedding,omitempty"`
	TagIDs          []string   `dynamodbav:"tag_ids,omitempty"`
	CreatedAt       time.Time  `dynamodbav:"created_at"`
	UpdatedAt       time.Time  `dynamodbav:"updated_at"`
}

func newNodeRecord(node entities.Node) (nodeRecord, error) {
	rec := nodeRecord{
		Kind: node.Kind().String(),
		ID:   node.ID().String(),
	}
	rec.PK = prefixNode + node.Ref().String()
	rec.SK = skMeta

	switch n := node.(type) {
	case *entities.Memo:
		rec.OwnerID = n.OwnerID().String()
		rec.Privacy = n.Privacy().String()
		rec.Title = n.Content().Title()
		rec.Body = n.Content().Body()
		rec.Summary = n.Summary().String()
		rec.Embedding = embeddingValues(n.Embedding())
		rec.TagIDs = tagIDStrings(n.TagIDs())
		rec.CreatedAt = n.CreatedAt()
		rec.UpdatedAt = n.UpdatedAt()
	case *entities.Reference:
		rec.OwnerID = n.OwnerID().String()
		rec.Privacy = n.Privacy().String()
		rec.Title = n.Content().Title()
		rec.Body = n.Content().Body()
		rec.Summary = n.Summary().String()
		rec.URL = n.Source().URL
		rec.SourceName = n.Source().SourceName
		rec.Authors = n.Source().Authors
		rec.PublicationDate = n.Source().PublicationDate
		rec.Embedding = embeddingValues(n.Embedding())
		rec.TagIDs = tagIDStrings(n.TagIDs())
		rec.CreatedAt = n.CreatedAt()
		rec.UpdatedAt = n.UpdatedAt()
	case *entities.Inkling:
		rec.OwnerID = n.OwnerID().String()
		rec.Privacy = n.Privacy().String()
		rec.Title = n.Content().Title()
		rec.Body = n.Content().Body()
		rec.Embedding = embeddingValues(n.Embedding())
		rec.TagIDs = tagIDStrings(n.TagIDs())
		rec.CreatedAt = n.CreatedAt()
		rec.UpdatedAt = n.UpdatedAt()
	default:
		return nodeRecord{}, fmt.Errorf("unsupported node kind %q for node record", rec.Kind)
	}

	rec.GSI1PK = prefixKind + rec.Kind
	rec.GSI1SK = orderKey(rec.CreatedAt, rec.ID)
	rec.GSI2PK = prefixOwner + rec.OwnerID + "#" + rec.Kind
	rec.GSI2SK = orderKey(rec.CreatedAt, rec.ID)
	return rec, nil
}

func (r nodeRecord) toNode() (entities.Node, error) {
	id, err := valueobjects.NewNodeIDFromString(r.ID)
	if err != nil {
		return nil, err
	}
	owner, err := valueobjects.NewUserID(r.OwnerID)
	if err != nil {
		return nil, err
	}
	content, err := valueobjects.NewNodeContent(r.Title, r.Body)
	if err != nil {
		return nil, err
	}
	privacy, err := valueobjects.NewPrivacySetting(r.Privacy)
	if err != nil {
		return nil, err
	}
	embedding, err := embeddingFromValues(r.Embedding)
	if err != nil {
		return nil, err
	}
	tagIDs, err := tagIDsFromStrings(r.TagIDs)
	if err != nil {
		return nil, err
	}

	switch valueobjects.NodeKind(r.Kind) {
	case valueobjects.KindMemo:
		summary, err := valueobjects.NewSummary(r.Summary)
		if err != nil {
			return nil, err
		}
		return entities.ReconstructMemo(id, owner, content, summary, privacy, embedding, tagIDs, r.CreatedAt, r.UpdatedAt), nil
	case valueobjects.KindReference:
		summary, err := valueobjects.NewSummary(r.Summary)
		if err != nil {
			return nil, err
		}
		source := entities.SourceInfo{
			URL:             r.URL,
			SourceName:      r.SourceName,
			Authors:         r.Authors,
			PublicationDate: r.PublicationDate,
		}
		return entities.ReconstructReference(id, owner, content, summary, source, privacy, embedding, tagIDs, r.CreatedAt, r.UpdatedAt), nil
	case valueobjects.KindInkling:
		return entities.ReconstructInkling(id, owner, content, privacy, embedding, tagIDs, r.CreatedAt, r.UpdatedAt), nil
	default:
		return nil, pkgerrors.NewDatabaseError("read node",
			fmt.Errorf("unexpected node kind %q", r.Kind))
	}
}

// linkRecord is the storage shape of a link. The same record is written as
// the canonical META item and denormalized into two endpoint mirror items so
// "links touching X" is one query.
type linkRecord struct {
	PK     string `dynamodbav:"pk"`
	SK     string `dynamodbav:"sk"`
	GSI1PK string `dynamodbav:"gsi1pk"`
	GSI1SK string `dynamodbav:"gsi1sk"`
	GSI3PK string `dynamodbav:"gsi3pk,omitempty"`

	ID         string    `dynamodbav:"id"`
	OwnerID    string    `dynamodbav:"owner_id"`
	Privacy    string    `dynamodbav:"privacy"`
	SourceRef  string    `dynamodbav:"source_ref"`
	TargetRef  string    `dynamodbav:"target_ref"`
	LinkTypeID string    `dynamodbav:"link_type_id"`
	Embedding  []float64 `dynamodbav:"embedding,omitempty"`
	TagIDs     []string  `dynamodbav:"tag_ids,omitempty"`
	CreatedAt  time.Time `dynamodbav:"created_at"`
	UpdatedAt  time.Time `dynamodbav:"updated_at"`
}

func newLinkRecord(link *entities.Link) linkRecord {
	rec := linkRecord{
		ID:         link.ID().String(),
		OwnerID:    link.OwnerID().String(),
		Privacy:    link.Privacy().String(),
		SourceRef:  link.Source().String(),
		TargetRef:  link.Target().String(),
		LinkTypeID: link.LinkTypeID().String(),
		Embedding:  embeddingValues(link.Embedding()),
		TagIDs:     tagIDStrings(link.TagIDs()),
		CreatedAt:  link.CreatedAt(),
		UpdatedAt:  link.UpdatedAt(),
	}
	rec.PK = prefixLink + rec.ID
	rec.SK = skMeta
	rec.GSI1PK = prefixKind + valueobjects.KindLink.String()
	rec.GSI1SK = orderKey(rec.CreatedAt, rec.ID)
	rec.GSI3PK = relationKey(link.Source(), link.Target(), link.LinkTypeID())
	return rec
}

// endpointMirror rekeys a link record under one of its endpoints
func (r linkRecord) endpointMirror(endpointRef string) linkRecord {
	mirror := r
	mirror.PK = prefixEndpoint + endpointRef
	mirror.SK = prefixLink + orderKey(r.CreatedAt, r.ID)
	mirror.GSI1PK = ""
	mirror.GSI1SK = ""
	mirror.GSI3PK = ""
	return mirror
}

func (r linkRecord) toLink() (*entities.Link, error) {
	id, err := valueobjects.NewNodeIDFromString(r.ID)
	if err != nil {
		return nil, err
	}
	owner, err := valueobjects.NewUserID(r.OwnerID)
	if err != nil {
		return nil, err
	}
	source, err := valueobjects.ParseNodeReference(r.SourceRef)
	if err != nil {
		return nil, err
	}
	target, err := valueobjects.ParseNodeReference(r.TargetRef)
	if err != nil {
		return nil, err
	}
	linkTypeID, err := valueobjects.NewNodeIDFromString(r.LinkTypeID)
	if err != nil {
		return nil, err
	}
	privacy, err := valueobjects.NewPrivacySetting(r.Privacy)
	if err != nil {
		return nil, err
	}
	embedding, err := embeddingFromValues(r.Embedding)
	if err != nil {
		return nil, err
	}
	tagIDs, err := tagIDsFromStrings(r.TagIDs)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructLink(id, owner, source, target, linkTypeID, privacy, embedding, tagIDs, r.CreatedAt, r.UpdatedAt), nil
}

type tagRecord struct {
	PK     string `dynamodbav:"pk"`
	SK     string `dynamodbav:"sk"`
	GSI1PK string `dynamodbav:"gsi1pk"`
	GSI1SK string `dynamodbav:"gsi1sk"`
	GSI2PK string `dynamodbav:"gsi2pk"`
	GSI2SK string `dynamodbav:"gsi2sk"`

	ID        string    `dynamodbav:"id"`
	OwnerID   string    `dynamodbav:"owner_id"`
	Name      string    `dynamodbav:"name"`
	Embedding []float64 `dynamodbav:"embedding,omitempty"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

func newTagRecord(tag *entities.Tag) tagRecord {
	rec := tagRecord{
		ID:        tag.ID().String(),
		OwnerID:   tag.OwnerID().String(),
		Name:      tag.Name(),
		Embedding: embeddingValues(tag.Embedding()),
		CreatedAt: tag.CreatedAt(),
		UpdatedAt: tag.UpdatedAt(),
	}
	rec.PK = prefixTag + rec.ID
	rec.SK = skMeta
	rec.GSI1PK = prefixKind + valueobjects.KindTag.String()
	rec.GSI1SK = orderKey(rec.CreatedAt, rec.ID)
	rec.GSI2PK = prefixOwner + rec.OwnerID + "#tags"
	rec.GSI2SK = rec.Name
	return rec
}

func (r tagRecord) toTag() (*entities.Tag, error) {
	id, err := valueobjects.NewNodeIDFromString(r.ID)
	if err != nil {
		return nil, err
	}
	owner, err := valueobjects.NewUserID(r.OwnerID)
	if err != nil {
		return nil, err
	}
	embedding, err := embeddingFromValues(r.Embedding)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructTag(id, owner, r.Name, embedding, r.CreatedAt, r.UpdatedAt), nil
}

type linkTypeRecord struct {
	PK     string `dynamodbav:"pk"`
	SK     string `dynamodbav:"sk"`
	GSI2PK string `dynamodbav:"gsi2pk"`
	GSI2SK string `dynamodbav:"gsi2sk"`

	ID          string    `dynamodbav:"id"`
	OwnerID     string    `dynamodbav:"owner_id"`
	Name        string    `dynamodbav:"name"`
	ReverseName string    `dynamodbav:"reverse_name,omitempty"`
	CreatedAt   time.Time `dynamodbav:"created_at"`
	UpdatedAt   time.Time `dynamodbav:"updated_at"`
}

func newLinkTypeRecord(linkType *entities.LinkType) linkTypeRecord {
	rec := linkTypeRecord{
		ID:          linkType.ID().String(),
		OwnerID:     linkType.OwnerID().String(),
		Name:        linkType.Name(),
		ReverseName: linkType.ReverseName(),
		CreatedAt:   linkType.CreatedAt(),
		UpdatedAt:   linkType.UpdatedAt(),
	}
	rec.PK = prefixLinkType + rec.ID
	rec.SK = skMeta
	rec.GSI2PK = prefixOwner + rec.OwnerID + "#linktypes"
	rec.GSI2SK = rec.Name
	return rec
}

func (r linkTypeRecord) toLinkType() (*entities.LinkType, error) {
	id, err := valueobjects.NewNodeIDFromString(r.ID)
	if err != nil {
		return nil, err
	}
	owner, err := valueobjects.NewUserID(r.OwnerID)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructLinkType(id, owner, r.Name, r.ReverseName, r.CreatedAt, r.UpdatedAt), nil
}

// edgeRecord is one direction of a friendship edge. Both directions are
// written in a single transaction so the graph is never half-connected.
type edgeRecord struct {
	PK string `dynamodbav:"pk"` // FRIEND#<user>
	SK string `dynamodbav:"sk"` // FRIEND#<other>

	Low       string    `dynamodbav:"low"`
	High      string    `dynamodbav:"high"`
	CreatedAt time.Time `dynamodbav:"created_at"`
}

func newEdgeRecords(edge friendship.Edge) [2]edgeRecord {
	base := edgeRecord{
		Low:       edge.Low().String(),
		High:      edge.High().String(),
		CreatedAt: edge.CreatedAt(),
	}
	forward := base
	forward.PK = prefixFriend + base.Low
	forward.SK = prefixFriend + base.High
	backward := base
	backward.PK = prefixFriend + base.High
	backward.SK = prefixFriend + base.Low
	return [2]edgeRecord{forward, backward}
}

// requestRecord is one direction of a pending request. The incoming and
// outgoing views are separate items under each user's partition.
type requestRecord struct {
	PK string `dynamodbav:"pk"` // USERREQ#<user>
	SK string `dynamodbav:"sk"` // IN#<sender> or OUT#<receiver>

	Sender    string    `dynamodbav:"sender"`
	Receiver  string    `dynamodbav:"receiver"`
	CreatedAt time.Time `dynamodbav:"created_at"`
}

func newRequestRecords(request friendship.Request) [2]requestRecord {
	base := requestRecord{
		Sender:    request.Sender().String(),
		Receiver:  request.Receiver().String(),
		CreatedAt: request.CreatedAt(),
	}
	incoming := base
	incoming.PK = prefixRequest + base.Receiver
	incoming.SK = "IN#" + base.Sender
	outgoing := base
	outgoing.PK = prefixRequest + base.Sender
	outgoing.SK = "OUT#" + base.Receiver
	return [2]requestRecord{incoming, outgoing}
}

// relationGuardRecord reserves a (source, target, type) triple on the main
// table. Its conditional put is what makes the uniqueness invariant hold
// against concurrent writers.
type relationGuardRecord struct {
	PK string `dynamodbav:"pk"` // REL#<source>#<target>#<type>
	SK string `dynamodbav:"sk"`
	ID string `dynamodbav:"id"`
}

func newRelationGuard(rec linkRecord) relationGuardRecord {
	return relationGuardRecord{
		PK: rec.GSI3PK,
		SK: skMeta,
		ID: rec.ID,
	}
}

func relationKey(source, target valueobjects.NodeReference, linkTypeID valueobjects.NodeID) string {
	return prefixRelation + source.String() + "#" + target.String() + "#" + linkTypeID.String()
}

// orderKey sorts items by creation time with the id as tiebreaker
func orderKey(createdAt time.Time, id string) string {
	return createdAt.UTC().Format(time.RFC3339Nano) + "#" + id
}

func embeddingValues(e valueobjects.Embedding) []float64 {
	if e.IsZero() {
		return nil
	}
	return e.Values()
}

func embeddingFromValues(values []float64) (valueobjects.Embedding, error) {
	if len(values) == 0 {
		return valueobjects.Embedding{}, nil
	}
	return valueobjects.NewEmbedding(values)
}

func tagIDStrings(ids []valueobjects.NodeID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func tagIDsFromStrings(raw []string) ([]valueobjects.NodeID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]valueobjects.NodeID, 0, len(raw))
	for _, s := range raw {
		id, err := valueobjects.NewNodeIDFromString(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
