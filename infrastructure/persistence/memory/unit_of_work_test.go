package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inklings-backend/application/ports"
	"inklings-backend/domain/core/entities"
	"inklings-backend/domain/core/valueobjects"
	"inklings-backend/infrastructure/persistence/memory"
	pkgerrors "inklings-backend/pkg/errors"
)

func newMemo(t *testing.T, owner, title string) *entities.Memo {
	t.Helper()
	user, err := valueobjects.NewUserID(owner)
	require.NoError(t, err)
	content, err := valueobjects.NewNodeContent(title, "")
	require.NoError(t, err)
	memo, err := entities.NewMemo(user, content, valueobjects.Summary{}, valueobjects.PrivacyPrivate)
	require.NoError(t, err)
	return memo
}

func TestUnitOfWork_CommitsOnSuccess(t *testing.T) {
	store := memory.NewStore()
	repos := memory.NewRepositories(store)
	uow := memory.NewUnitOfWork(store, zap.NewNop())
	ctx := context.Background()

	memo := newMemo(t, "alice", "kept")
	tag, err := entities.NewTag(memo.OwnerID(), "golang")
	require.NoError(t, err)

	err = uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		if err := tx.Nodes().Save(ctx, memo); err != nil {
			return err
		}
		return tx.Tags().Save(ctx, tag)
	})
	require.NoError(t, err)

	got, err := repos.Nodes().Get(ctx, memo.Ref())
	require.NoError(t, err)
	assert.True(t, got.ID().Equals(memo.ID()))
	_, err = repos.Tags().Get(ctx, tag.ID())
	require.NoError(t, err)
}

func TestUnitOfWork_RollsBackOnError(t *testing.T) {
	store := memory.NewStore()
	repos := memory.NewRepositories(store)
	uow := memory.NewUnitOfWork(store, zap.NewNop())
	ctx := context.Background()

	existing := newMemo(t, "alice", "already here")
	require.NoError(t, repos.Nodes().Save(ctx, existing))

	added := newMemo(t, "alice", "added in tx")
	boom := pkgerrors.NewInternalError("boom")

	err := uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		if err := tx.Nodes().Save(ctx, added); err != nil {
			return err
		}
		if err := tx.Nodes().Delete(ctx, existing.Ref()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The write and the delete both unwind.
	_, err = repos.Nodes().Get(ctx, added.Ref())
	assert.True(t, pkgerrors.IsNotFound(err))
	_, err = repos.Nodes().Get(ctx, existing.Ref())
	assert.NoError(t, err)
}

func TestUnitOfWork_RollsBackInPlaceMutation(t *testing.T) {
	store := memory.NewStore()
	repos := memory.NewRepositories(store)
	uow := memory.NewUnitOfWork(store, zap.NewNop())
	ctx := context.Background()

	memo := newMemo(t, "alice", "original title")
	require.NoError(t, repos.Nodes().Save(ctx, memo))

	boom := pkgerrors.NewInternalError("boom")
	err := uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		node, err := tx.Nodes().Get(ctx, memo.Ref())
		if err != nil {
			return err
		}
		changed, err := valueobjects.NewNodeContent("changed title", "")
		if err != nil {
			return err
		}
		if err := node.(*entities.Memo).UpdateContent(changed); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The mutation happened on the stored pointer, not through Save, and
	// must still unwind.
	got, err := repos.Nodes().Get(ctx, memo.Ref())
	require.NoError(t, err)
	assert.Equal(t, "original title", got.(*entities.Memo).Content().Title())
}

func TestUnitOfWork_RollsBackListOrder(t *testing.T) {
	store := memory.NewStore()
	repos := memory.NewRepositories(store)
	uow := memory.NewUnitOfWork(store, zap.NewNop())
	ctx := context.Background()

	first := newMemo(t, "alice", "first")
	require.NoError(t, repos.Nodes().Save(ctx, first))

	_ = uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		if err := tx.Nodes().Save(ctx, newMemo(t, "alice", "second")); err != nil {
			return err
		}
		return pkgerrors.NewInternalError("abort")
	})

	memos, err := repos.Nodes().ListByKind(ctx, valueobjects.KindMemo)
	require.NoError(t, err)
	require.Len(t, memos, 1)
	assert.True(t, memos[0].ID().Equals(first.ID()))
}
