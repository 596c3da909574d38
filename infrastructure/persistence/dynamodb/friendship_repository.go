package dynamodb

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"inklings-backend/domain/core/valueobjects"
	"inklings-backend/domain/friendship"
	pkgerrors "inklings-backend/pkg/errors"
)

type friendshipRepository struct {
	repoBase
}

// AddEdge writes both directions of the edge in one transaction
func (r *friendshipRepository) AddEdge(ctx context.Context, edge friendship.Edge) error {
	records := newEdgeRecords(edge)
	items := make([]types.TransactWriteItem, 0, 2)
	for _, rec := range records {
		put, err := putItem(r.table, rec)
		if err != nil {
			return err
		}
		items = append(items, put)
	}
	return r.writer.write(ctx, items)
}

// RemoveEdge deletes both directions in one transaction, so no reader ever
// sees a one-way friendship
func (r *friendshipRepository) RemoveEdge(ctx context.Context, a, b valueobjects.UserID) error {
	if _, err := friendship.NewEdge(a, b); err != nil {
		return err
	}
	return r.writer.write(ctx, []types.TransactWriteItem{
		deleteItem(r.table, prefixFriend+a.String(), prefixFriend+b.String()),
		deleteItem(r.table, prefixFriend+b.String(), prefixFriend+a.String()),
	})
}

func (r *friendshipRepository) EdgeExists(ctx context.Context, a, b valueobjects.UserID) (bool, error) {
	if _, err := friendship.NewEdge(a, b); err != nil {
		return false, err
	}
	var rec edgeRecord
	return r.getItem(ctx, prefixFriend+a.String(), prefixFriend+b.String(), &rec)
}

func (r *friendshipRepository) FriendsOf(ctx context.Context, user valueobjects.UserID) ([]valueobjects.UserID, error) {
	items, err := r.queryAll(ctx, "", "pk", prefixFriend+user.String())
	if err != nil {
		return nil, err
	}
	out := make([]valueobjects.UserID, 0, len(items))
	for _, item := range items {
		var rec edgeRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal edge", err)
		}
		otherID := rec.High
		if rec.High == user.String() {
			otherID = rec.Low
		}
		other, err := valueobjects.NewUserID(otherID)
		if err != nil {
			return nil, err
		}
		out = append(out, other)
	}
	return out, nil
}

// PutRequest writes the incoming and outgoing views in one transaction
func (r *friendshipRepository) PutRequest(ctx context.Context, request friendship.Request) error {
	records := newRequestRecords(request)
	items := make([]types.TransactWriteItem, 0, 2)
	for _, rec := range records {
		put, err := putItem(r.table, rec)
		if err != nil {
			return err
		}
		items = append(items, put)
	}
	return r.writer.write(ctx, items)
}

func (r *friendshipRepository) DeleteRequest(ctx context.Context, sender, receiver valueobjects.UserID) error {
	return r.writer.write(ctx, []types.TransactWriteItem{
		deleteItem(r.table, prefixRequest+receiver.String(), "IN#"+sender.String()),
		deleteItem(r.table, prefixRequest+sender.String(), "OUT#"+receiver.String()),
	})
}

func (r *friendshipRepository) RequestExists(ctx context.Context, sender, receiver valueobjects.UserID) (bool, error) {
	var rec requestRecord
	return r.getItem(ctx, prefixRequest+receiver.String(), "IN#"+sender.String(), &rec)
}

// ProfileOf assembles the read model from the user's edge and request
// partitions
func (r *friendshipRepository) ProfileOf(ctx context.Context, user valueobjects.UserID) (friendship.Profile, error) {
	edgeItems, err := r.queryAll(ctx, "", "pk", prefixFriend+user.String())
	if err != nil {
		return friendship.Profile{}, err
	}
	edges := make([]friendship.Edge, 0, len(edgeItems))
	for _, item := range edgeItems {
		var rec edgeRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return friendship.Profile{}, pkgerrors.NewDatabaseError("unmarshal edge", err)
		}
		low, err := valueobjects.NewUserID(rec.Low)
		if err != nil {
			return friendship.Profile{}, err
		}
		high, err := valueobjects.NewUserID(rec.High)
		if err != nil {
			return friendship.Profile{}, err
		}
		edge, err := friendship.ReconstructEdge(low, high, rec.CreatedAt)
		if err != nil {
			return friendship.Profile{}, err
		}
		edges = append(edges, edge)
	}

	requestItems, err := r.queryAll(ctx, "", "pk", prefixRequest+user.String())
	if err != nil {
		return friendship.Profile{}, err
	}
	requests := make([]friendship.Request, 0, len(requestItems))
	for _, item := range requestItems {
		var rec requestRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return friendship.Profile{}, pkgerrors.NewDatabaseError("unmarshal request", err)
		}
		// The IN and OUT views describe the same request; keep one of each
		// pair by skipping the outgoing duplicate of a self-partition row.
		if strings.HasPrefix(rec.SK, "OUT#") && rec.Sender == rec.Receiver {
			continue
		}
		sender, err := valueobjects.NewUserID(rec.Sender)
		if err != nil {
			return friendship.Profile{}, err
		}
		receiver, err := valueobjects.NewUserID(rec.Receiver)
		if err != nil {
			return friendship.Profile{}, err
		}
		request, err := friendship.ReconstructRequest(sender, receiver, rec.CreatedAt)
		if err != nil {
			return friendship.Profile{}, err
		}
		requests = append(requests, request)
	}

	return friendship.NewProfile(user, edges, requests), nil
}
