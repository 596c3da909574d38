package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"inklings-backend/application/ports"
	pkgerrors "inklings-backend/pkg/errors"
)

// transactionLimit is the DynamoDB TransactWriteItems item cap
const transactionLimit = 100

// UnitOfWork collects the writes of one business operation and commits them
// in a single TransactWriteItems call. Reads inside the transaction see
// committed state only; the domain services are written so their invariant
// checks tolerate that.
type UnitOfWork struct {
	client *dynamodb.Client
	table  string
	logger *zap.Logger
}

// NewUnitOfWork creates a unit of work over a table
func NewUnitOfWork(client *dynamodb.Client, table string, logger *zap.Logger) *UnitOfWork {
	return &UnitOfWork{client: client, table: table, logger: logger}
}

// Execute runs fn against buffering repositories and commits the buffer
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, tx ports.Repositories) error) error {
	buffer := &txBuffer{}
	tx := newRepositories(u.client, u.table, buffer, u.logger)

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if len(buffer.items) == 0 {
		return nil
	}
	if len(buffer.items) > transactionLimit {
		return pkgerrors.NewDatabaseError("transact write",
			pkgerrors.NewInternalError("transaction exceeds the item limit"))
	}

	_, err := u.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: buffer.items,
	})
	if err != nil {
		u.logger.Error("transaction commit failed",
			zap.Int("items", len(buffer.items)),
			zap.Error(err),
		)
		return pkgerrors.NewDatabaseError("transact write", err)
	}
	return nil
}
