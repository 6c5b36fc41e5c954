package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/deck-hub/internal/apperror"
	"github.com/sakif/deck-hub/internal/model"
)

func newTestFolderService(t *testing.T) (*FolderService, *mockFolderRepo, *mockDeckRepo) {
	t.Helper()
	folderRepo := newMockFolderRepo()
	deckRepo := newMockDeckRepo()
	svc := NewFolderService(folderRepo, deckRepo, testLogger())
	return svc, folderRepo, deckRepo
}

func TestFolderCreate(t *testing.T) {
	svc, _, _ := newTestFolderService(t)

	folder, err := svc.Create(context.Background(), "user-1", "Modern", "")
	require.NoError(t, err)
	assert.Equal(t, "Modern", folder.Name)
	assert.Empty(t, folder.ParentID)
}

func TestFolderCreate_NestedUnderOwnFolder(t *testing.T) {
	svc, _, _ := newTestFolderService(t)
	ctx := context.Background()

	parent, err := svc.Create(ctx, "user-1", "Modern", "")
	require.NoError(t, err)

	child, err := svc.Create(ctx, "user-1", "Burn Decks", parent.ID)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, child.ParentID)
}

func TestFolderCreate_RejectsForeignParent(t *testing.T) {
	svc, _, _ := newTestFolderService(t)
	ctx := context.Background()

	theirs, err := svc.Create(ctx, "user-2", "Theirs", "")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "user-1", "Mine", theirs.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestFolderCreate_RejectsMissingParent(t *testing.T) {
	svc, _, _ := newTestFolderService(t)

	_, err := svc.Create(context.Background(), "user-1", "Orphan", "no-such-folder")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestFolderUpdate_RejectsSelfParent(t *testing.T) {
	svc, _, _ := newTestFolderService(t)
	ctx := context.Background()

	folder, err := svc.Create(ctx, "user-1", "Modern", "")
	require.NoError(t, err)

	_, err = svc.Update(ctx, "user-1", folder.ID, FolderUpdate{ParentID: &folder.ID})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestFolderUpdate_RejectsMoveIntoOwnSubtree(t *testing.T) {
	svc, _, _ := newTestFolderService(t)
	ctx := context.Background()

	// root → mid → leaf; moving root under leaf would close a cycle.
	root, err := svc.Create(ctx, "user-1", "Root", "")
	require.NoError(t, err)
	mid, err := svc.Create(ctx, "user-1", "Mid", root.ID)
	require.NoError(t, err)
	leaf, err := svc.Create(ctx, "user-1", "Leaf", mid.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, "user-1", root.ID, FolderUpdate{ParentID: &leaf.ID})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestFolderUpdate_ValidMove(t *testing.T) {
	svc, _, _ := newTestFolderService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "user-1", "A", "")
	require.NoError(t, err)
	b, err := svc.Create(ctx, "user-1", "B", "")
	require.NoError(t, err)
	child, err := svc.Create(ctx, "user-1", "Child", a.ID)
	require.NoError(t, err)

	moved, err := svc.Update(ctx, "user-1", child.ID, FolderUpdate{ParentID: &b.ID})
	require.NoError(t, err)
	assert.Equal(t, b.ID, moved.ParentID)

	// Moving to the top level with an explicit empty parent.
	topLevel := ""
	moved, err = svc.Update(ctx, "user-1", child.ID, FolderUpdate{ParentID: &topLevel})
	require.NoError(t, err)
	assert.Empty(t, moved.ParentID)
}

func TestFolderDelete_NonEmptyRequiresCascade(t *testing.T) {
	svc, _, _ := newTestFolderService(t)
	ctx := context.Background()

	parent, err := svc.Create(ctx, "user-1", "Parent", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-1", "Child", parent.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, "user-1", parent.ID, false)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	require.NoError(t, svc.Delete(ctx, "user-1", parent.ID, true))
	_, err = svc.Get(ctx, "user-1", parent.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestFolderDelete_EmptyWithoutCascade(t *testing.T) {
	svc, _, _ := newTestFolderService(t)
	ctx := context.Background()

	folder, err := svc.Create(ctx, "user-1", "Empty", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user-1", folder.ID, false))
}

func TestFolderDelete_OwnershipEnforced(t *testing.T) {
	svc, _, _ := newTestFolderService(t)
	ctx := context.Background()

	folder, err := svc.Create(ctx, "user-1", "Mine", "")
	require.NoError(t, err)

	err = svc.Delete(ctx, "user-2", folder.ID, false)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestFolderList_BuildsTreeWithDecks(t *testing.T) {
	svc, _, deckRepo := newTestFolderService(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, "user-1", "Root", "")
	require.NoError(t, err)
	mid, err := svc.Create(ctx, "user-1", "Mid", root.ID)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-1", "Leaf", mid.ID)
	require.NoError(t, err)

	deck := &model.Deck{Name: "Burn", UserID: "user-1", FolderID: mid.ID}
	require.NoError(t, deckRepo.CreateDeck(ctx, deck))

	tree, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "Root", tree[0].Name)

	require.Len(t, tree[0].Children, 1)
	gotMid := tree[0].Children[0]
	assert.Equal(t, "Mid", gotMid.Name)
	require.Len(t, gotMid.Children, 1)
	assert.Equal(t, "Leaf", gotMid.Children[0].Name)

	require.Len(t, gotMid.Decks, 1)
	assert.Equal(t, "Burn", gotMid.Decks[0].Name)
}
