package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"inklings-backend/application/ports"
	"inklings-backend/domain/core/entities"
	"inklings-backend/domain/core/valueobjects"
	domainservices "inklings-backend/domain/services"
	pkgerrors "inklings-backend/pkg/errors"
)

// Repositories is the DynamoDB repository bundle over one single-table
// client. Reads always hit the table directly; writes go through the bundle's
// writer, which is either immediate or a transaction buffer.
type Repositories struct {
	nodes       *nodeRepository
	links       *linkRepository
	tags        *tagRepository
	linkTypes   *linkTypeRepository
	friendships *friendshipRepository
}

// NewRepositories creates the public repository bundle
func NewRepositories(client *dynamodb.Client, table string, logger *zap.Logger) *Repositories {
	return newRepositories(client, table, &directWriter{client: client}, logger)
}

func newRepositories(client *dynamodb.Client, table string, w writer, logger *zap.Logger) *Repositories {
	base := repoBase{client: client, table: table, writer: w, logger: logger}
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
	client *dynamodb.Client
	table  string
	writer writer
	logger *zap.Logger
}

// getItem loads one item by key into out; found is false on a miss
func (b *repoBase) getItem(ctx context.Context, pk, sk string, out interface{}) (bool, error) {
	result, err := b.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(b.table),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: pk},
			"sk": &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return false, pkgerrors.NewDatabaseError("get item", err)
	}
	if result.Item == nil {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return false, pkgerrors.NewDatabaseError("unmarshal item", err)
	}
	return true, nil
}

// queryAll runs a key-equality query, following pagination to the end
func (b *repoBase) queryAll(ctx context.Context, index string, keyAttr, keyValue string) ([]map[string]types.AttributeValue, error) {
	keyCond := expression.Key(keyAttr).Equal(expression.Value(keyValue))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build query", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(b.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if index != "" {
		input.IndexName = aws.String(index)
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(b.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query", err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

type nodeRepository struct {
	repoBase
}

func (r *nodeRepository) Save(ctx context.Context, node entities.Node) error {
	rec, err := newNodeRecord(node)
	if err != nil {
		return err
	}
	put, err := putItem(r.table, rec)
	if err != nil {
		return err
	}
	return r.writer.write(ctx, []types.TransactWriteItem{put})
}

func (r *nodeRepository) Get(ctx context.Context, ref valueobjects.NodeReference) (entities.Node, error) {
	var rec nodeRecord
	found, err := r.getItem(ctx, prefixNode+ref.String(), skMeta, &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, pkgerrors.NewNotFoundError("node " + ref.String())
	}
	return rec.toNode()
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
		items, err := r.queryAll(ctx, indexByKind, "gsi1pk", prefixKind+kind.String())
		if err != nil {
			return nil, err
		}
		out := make([]entities.Node, 0, len(items))
		for _, item := range items {
			var rec tagRecord
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, pkgerrors.NewDatabaseError("unmarshal tag", err)
			}
			tag, err := rec.toTag()
			if err != nil {
				return nil, err
			}
			out = append(out, tag)
		}
		return out, nil
	default:
		items, err := r.queryAll(ctx, indexByKind, "gsi1pk", prefixKind+kind.String())
		if err != nil {
			return nil, err
		}
		out := make([]entities.Node, 0, len(items))
		for _, item := range items {
			var rec nodeRecord
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, pkgerrors.NewDatabaseError("unmarshal node", err)
			}
			node, err := rec.toNode()
			if err != nil {
				return nil, err
			}
			out = append(out, node)
		}
		return out, nil
	}
}

func (r *nodeRepository) ListByOwner(ctx context.Context, kind valueobjects.NodeKind, owner valueobjects.UserID) ([]entities.Node, error) {
	items, err := r.queryAll(ctx, indexByOwner, "gsi2pk", prefixOwner+owner.String()+"#"+kind.String())
	if err != nil {
		return nil, err
	}
	out := make([]entities.Node, 0, len(items))
	for _, item := range items {
		var rec nodeRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal node", err)
		}
		node, err := rec.toNode()
		if err != nil {
			return nil, err
		}
		out = append(out, node)
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

func (r *nodeRepository) Delete(ctx context.Context, ref valueobjects.NodeReference) error {
	return r.writer.write(ctx, []types.TransactWriteItem{
		deleteItem(r.table, prefixNode+ref.String(), skMeta),
	})
}

type linkRepository struct {
	repoBase
}

// Save writes the canonical link item, the two endpoint mirrors and the
// relation guard in one transaction. The guard's conditional put rejects a
// concurrent second link for the same (source, target, type) triple.
func (r *linkRepository) Save(ctx context.Context, link *entities.Link) error {
	rec := newLinkRecord(link)
	records := []linkRecord{rec, rec.endpointMirror(rec.SourceRef)}
	if rec.TargetRef != rec.SourceRef {
		// A self-referencing link has one mirror; a transaction cannot
		// carry the same key twice.
		records = append(records, rec.endpointMirror(rec.TargetRef))
	}
	items := make([]types.TransactWriteItem, 0, len(records)+1)
	for _, record := range records {
		put, err := putItem(r.table, record)
		if err != nil {
			return err
		}
		items = append(items, put)
	}
	guard, err := putItemIfVacant(r.table, newRelationGuard(rec), rec.ID)
	if err != nil {
		return err
	}
	items = append(items, guard)
	return r.writer.write(ctx, items)
}

func (r *linkRepository) Get(ctx context.Context, id valueobjects.NodeID) (*entities.Link, error) {
	var rec linkRecord
	found, err := r.getItem(ctx, prefixLink+id.String(), skMeta, &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, pkgerrors.NewNotFoundError("link " + id.String())
	}
	return rec.toLink()
}

func (r *linkRepository) ListLinks(ctx context.Context) ([]*entities.Link, error) {
	items, err := r.queryAll(ctx, indexByKind, "gsi1pk", prefixKind+valueobjects.KindLink.String())
	if err != nil {
		return nil, err
	}
	return unmarshalLinks(items)
}

func (r *linkRepository) ListLinksTouching(ctx context.Context, ref valueobjects.NodeReference) ([]*entities.Link, error) {
	items, err := r.queryAll(ctx, "", "pk", prefixEndpoint+ref.String())
	if err != nil {
		return nil, err
	}
	links, err := unmarshalLinks(items)
	if err != nil {
		return nil, err
	}
	// A self-referencing link appears under both mirror slots of the same
	// endpoint partition only once, but guard against double rows anyway.
	seen := make(map[string]struct{}, len(links))
	out := links[:0]
	for _, link := range links {
		key := link.ID().String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, link)
	}
	return out, nil
}

func (r *linkRepository) FindRelation(ctx context.Context, source, target valueobjects.NodeReference, linkTypeID valueobjects.NodeID) (*entities.Link, error) {
	items, err := r.queryAll(ctx, indexByRelation, "gsi3pk", relationKey(source, target, linkTypeID))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.NewNotFoundError("link relation")
	}
	var rec linkRecord
	if err := attributevalue.UnmarshalMap(items[0], &rec); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal link", err)
	}
	return rec.toLink()
}

// Delete removes the canonical item and both endpoint mirrors atomically
func (r *linkRepository) Delete(ctx context.Context, id valueobjects.NodeID) error {
	link, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	rec := newLinkRecord(link)
	items := []types.TransactWriteItem{
		deleteItem(r.table, rec.PK, rec.SK),
		deleteItem(r.table, prefixEndpoint+rec.SourceRef, prefixLink+orderKey(rec.CreatedAt, rec.ID)),
	}
	if rec.TargetRef != rec.SourceRef {
		items = append(items, deleteItem(r.table, prefixEndpoint+rec.TargetRef, prefixLink+orderKey(rec.CreatedAt, rec.ID)))
	}
	items = append(items, deleteItem(r.table, rec.GSI3PK, skMeta))
	return r.writer.write(ctx, items)
}

func unmarshalLinks(items []map[string]types.AttributeValue) ([]*entities.Link, error) {
	out := make([]*entities.Link, 0, len(items))
	for _, item := range items {
		var rec linkRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal link", err)
		}
		link, err := rec.toLink()
		if err != nil {
			return nil, err
		}
		out = append(out, link)
	}
	return out, nil
}

type tagRepository struct {
	repoBase
}

func (r *tagRepository) Save(ctx context.Context, tag *entities.Tag) error {
	put, err := putItem(r.table, newTagRecord(tag))
	if err != nil {
		return err
	}
	return r.writer.write(ctx, []types.TransactWriteItem{put})
}

func (r *tagRepository) Get(ctx context.Context, id valueobjects.NodeID) (*entities.Tag, error) {
	var rec tagRecord
	found, err := r.getItem(ctx, prefixTag+id.String(), skMeta, &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, pkgerrors.NewNotFoundError("tag " + id.String())
	}
	return rec.toTag()
}

func (r *tagRepository) GetByName(ctx context.Context, owner valueobjects.UserID, name string) (*entities.Tag, error) {
	normalized := entities.NormalizeTagName(name)
	items, err := r.queryAll(ctx, indexByOwner, "gsi2pk", prefixOwner+owner.String()+"#tags")
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		var rec tagRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal tag", err)
		}
		if rec.Name == normalized {
			return rec.toTag()
		}
	}
	return nil, pkgerrors.NewNotFoundError("tag " + normalized)
}

func (r *tagRepository) ListByOwner(ctx context.Context, owner valueobjects.UserID) ([]*entities.Tag, error) {
	items, err := r.queryAll(ctx, indexByOwner, "gsi2pk", prefixOwner+owner.String()+"#tags")
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Tag, 0, len(items))
	for _, item := range items {
		var rec tagRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal tag", err)
		}
		tag, err := rec.toTag()
		if err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, nil
}

func (r *tagRepository) Delete(ctx context.Context, id valueobjects.NodeID) error {
	return r.writer.write(ctx, []types.TransactWriteItem{
		deleteItem(r.table, prefixTag+id.String(), skMeta),
	})
}

type linkTypeRepository struct {
	repoBase
}

func (r *linkTypeRepository) Save(ctx context.Context, linkType *entities.LinkType) error {
	put, err := putItem(r.table, newLinkTypeRecord(linkType))
	if err != nil {
		return err
	}
	return r.writer.write(ctx, []types.TransactWriteItem{put})
}

func (r *linkTypeRepository) GetLinkType(ctx context.Context, id valueobjects.NodeID) (*entities.LinkType, error) {
	var rec linkTypeRecord
	found, err := r.getItem(ctx, prefixLinkType+id.String(), skMeta, &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, pkgerrors.NewNotFoundError("link type " + id.String())
	}
	return rec.toLinkType()
}

func (r *linkTypeRepository) GetByName(ctx context.Context, owner valueobjects.UserID, name string) (*entities.LinkType, error) {
	items, err := r.queryAll(ctx, indexByOwner, "gsi2pk", prefixOwner+owner.String()+"#linktypes")
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		var rec linkTypeRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal link type", err)
		}
		if rec.Name == name {
			return rec.toLinkType()
		}
	}
	return nil, pkgerrors.NewNotFoundError("link type " + name)
}

func (r *linkTypeRepository) ListByOwner(ctx context.Context, owner valueobjects.UserID) ([]*entities.LinkType, error) {
	items, err := r.queryAll(ctx, indexByOwner, "gsi2pk", prefixOwner+owner.String()+"#linktypes")
	if err != nil {
		return nil, err
	}
	out := make([]*entities.LinkType, 0, len(items))
	for _, item := range items {
		var rec linkTypeRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal link type", err)
		}
		linkType, err := rec.toLinkType()
		if err != nil {
			return nil, err
		}
		out = append(out, linkType)
	}
	return out, nil
}

func (r *linkTypeRepository) Delete(ctx context.Context, id valueobjects.NodeID) error {
	return r.writer.write(ctx, []types.TransactWriteItem{
		deleteItem(r.table, prefixLinkType+id.String(), skMeta),
	})
}
