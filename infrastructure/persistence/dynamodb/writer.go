package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	pkgerrors "inklings-backend/pkg/errors"
)

// writer absorbs the transactional writes of one repository operation.
// The direct writer executes them at once; the transaction buffer defers
// them to the unit of work's single TransactWriteItems call.
type writer interface {
	write(ctx context.Context, items []types.TransactWriteItem) error
}

type directWriter struct {
	client *dynamodb.Client
}

func (w *directWriter) write(ctx context.Context, items []types.TransactWriteItem) error {
	if len(items) == 0 {
		return nil
	}
	_, err := w.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("transact write", err)
	}
	return nil
}

// txBuffer collects writes until the unit of work commits
type txBuffer struct {
	items []types.TransactWriteItem
}

func (w *txBuffer) write(_ context.Context, items []types.TransactWriteItem) error {
	w.items = append(w.items, items...)
	return nil
}

func putItem(table string, record interface{}) (types.TransactWriteItem, error) {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return types.TransactWriteItem{}, pkgerrors.NewDatabaseError("marshal item", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(table),
			Item:      item,
		},
	}, nil
}

// putItemIfVacant writes a reservation item that fails the transaction when
// another holder already occupies the key
func putItemIfVacant(table string, record interface{}, holderID string) (types.TransactWriteItem, error) {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return types.TransactWriteItem{}, pkgerrors.NewDatabaseError("marshal item", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(table),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(pk) OR id = :id"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":id": &types.AttributeValueMemberS{Value: holderID},
			},
		},
	}, nil
}

func deleteItem(table, pk, sk string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(table),
			Key: map[string]types.AttributeValue{
				"pk": &types.AttributeValueMemberS{Value: pk},
				"sk": &types.AttributeValueMemberS{Value: sk},
			},
		},
	}
}
