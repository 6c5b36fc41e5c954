package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/deck-hub/internal/apperror"
	"github.com/sakif/deck-hub/internal/model"
	"github.com/sakif/deck-hub/internal/repository"
)

const MaxFolderNameLength = 100

// FolderService manages the per-user folder tree. Folders nest arbitrarily
// deep; every mutation enforces same-user ownership between parent and child,
// and re-parenting rejects anything that would make a folder its own ancestor.
type FolderService struct {
	repo   repository.FolderRepository
	decks  repository.DeckRepository
	logger *slog.Logger
}

func NewFolderService(repo repository.FolderRepository, decks repository.DeckRepository, logger *slog.Logger) *FolderService {
	return &FolderService{
		repo:   repo,
		decks:  decks,
		logger: logger,
	}
}

// Create validates and saves a new folder owned by userID, optionally nested
// under a parent the same user owns.
func (s *FolderService) Create(ctx context.Context, userID, name, parentID string) (*model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "folder name is required")
	}
	if len(name) > MaxFolderNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("folder name must be %d characters or less", MaxFolderNameLength))
	}

	if parentID != "" {
		if _, err := s.ownedFolder(ctx, userID, parentID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.ValidationFailed("parentId", "parent folder does not exist")
			}
			return nil, err
		}
	}

	folder := &model.Folder{
		Name:     name,
		UserID:   userID,
		ParentID: parentID,
	}

	if err := s.repo.CreateFolder(ctx, folder); err != nil {
		s.logger.Error("failed to create folder",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating folder: %w", err)
	}

	s.logger.Info("folder created",
		slog.String("id", folder.ID),
		slog.String("user_id", userID),
		slog.String("name", folder.Name),
	)

	return folder, nil
}

// Get retrieves a single folder the user owns, with its immediate children
// and decks attached.
func (s *FolderService) Get(ctx context.Context, userID, folderID string) (*model.Folder, error) {
	folder, err := s.ownedFolder(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}

	all, err := s.repo.ListFoldersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	for _, f := range all {
		if f.ParentID == folder.ID {
			folder.Children = append(folder.Children, f)
		}
	}

	decks, err := s.decks.ListDecksByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing decks: %w", err)
	}
	for _, d := range decks {
		if d.FolderID == folder.ID {
			folder.Decks = append(folder.Decks, d)
		}
	}

	return folder, nil
}

// List returns the user's folders assembled into a tree of top-level folders,
// each with its nested Children and contained Decks populated.
func (s *FolderService) List(ctx context.Context, userID string) ([]model.Folder, error) {
	flat, err := s.repo.ListFoldersByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list folders",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing folders: %w", err)
	}

	decks, err := s.decks.ListDecksByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing decks: %w", err)
	}

	return buildTree(flat, decks), nil
}

// FolderUpdate carries the fields Update may change. A non-nil empty ParentID
// moves the folder to the top level.
type FolderUpdate struct {
	Name     *string
	ParentID *string
}

// Update renames or re-parents a folder the user owns.
//
// Re-parenting is where the tree invariant lives: the new parent must exist,
// must belong to the same user, and must not be the folder itself or any of
// its descendants. Without that last check a move could detach a subtree into
// an unreachable cycle.
func (s *FolderService) Update(ctx context.Context, userID, folderID string, update FolderUpdate) (*model.Folder, error) {
	folder, err := s.ownedFolder(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "folder name is required")
		}
		if len(name) > MaxFolderNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("folder name must be %d characters or less", MaxFolderNameLength))
		}
		folder.Name = name
	}

	if update.ParentID != nil && *update.ParentID != folder.ParentID {
		newParent := *update.ParentID
		if newParent != "" {
			if err := s.checkNoCycle(ctx, userID, folderID, newParent); err != nil {
				return nil, err
			}
		}
		folder.ParentID = newParent
	}

	if err := s.repo.UpdateFolder(ctx, folder); err != nil {
		return nil, fmt.Errorf("updating folder: %w", err)
	}

	return folder, nil
}

// Delete removes a folder the user owns. Without cascade, a folder that still
// has child folders or decks is refused with ErrConflict. With cascade, the
// whole subtree of folders is removed and the decks inside it are moved to
// the top level — deck data is never destroyed by folder cleanup.
func (s *FolderService) Delete(ctx context.Context, userID, folderID string, cascade bool) error {
	if _, err := s.ownedFolder(ctx, userID, folderID); err != nil {
		return err
	}

	if cascade {
		if err := s.repo.DeleteFolderCascade(ctx, folderID); err != nil {
			return fmt.Errorf("deleting folder tree: %w", err)
		}
	} else {
		hasContents, err := s.repo.HasContents(ctx, folderID)
		if err != nil {
			return fmt.Errorf("checking folder contents: %w", err)
		}
		if hasContents {
			return apperror.Conflict("folder", "folder is not empty; delete its contents first or use cascade")
		}
		if err := s.repo.DeleteFolder(ctx, folderID); err != nil {
			return fmt.Errorf("deleting folder: %w", err)
		}
	}

	s.logger.Info("folder deleted",
		slog.String("id", folderID),
		slog.String("user_id", userID),
		slog.Bool("cascade", cascade),
	)

	return nil
}

// checkNoCycle validates newParent as a destination for folderID: it must be
// an existing folder of the same user, and walking ancestors up from
// newParent must never pass through folderID.
func (s *FolderService) checkNoCycle(ctx context.Context, userID, folderID, newParent string) error {
	if newParent == folderID {
		return apperror.ValidationFailed("parentId", "folder cannot be its own parent")
	}

	parent, err := s.ownedFolder(ctx, userID, newParent)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ValidationFailed("parentId", "parent folder does not exist")
		}
		return err
	}

	// Walk up from the candidate parent. Hitting folderID means newParent is
	// inside folderID's subtree and the move would create a cycle.
	for parent.ParentID != "" {
		if parent.ParentID == folderID {
			return apperror.ValidationFailed("parentId", "folder cannot be moved into its own subtree")
		}
		parent, err = s.repo.GetFolderByID(ctx, parent.ParentID)
		if err != nil {
			return fmt.Errorf("walking folder ancestry: %w", err)
		}
	}

	return nil
}

func (s *FolderService) ownedFolder(ctx context.Context, userID, folderID string) (*model.Folder, error) {
	folderID = strings.TrimSpace(folderID)
	if folderID == "" {
		return nil, apperror.ValidationFailed("id", "folder ID is required")
	}

	folder, err := s.repo.GetFolderByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.UserID != userID {
		return nil, apperror.Forbidden("folder belongs to another user")
	}

	return folder, nil
}

// buildTree assembles flat folder rows into nested top-level trees and slots
// each deck into its folder's Decks list. Children keep the flat listing's
// order (oldest first).
func buildTree(flat []model.Folder, decks []model.Deck) []model.Folder {
	byID := make(map[string]*model.Folder, len(flat))
	childrenOf := make(map[string][]*model.Folder)
	for i := range flat {
		f := &flat[i]
		byID[f.ID] = f
		if f.ParentID != "" {
			childrenOf[f.ParentID] = append(childrenOf[f.ParentID], f)
		}
	}

	for _, d := range decks {
		if d.FolderID == "" {
			continue
		}
		if f, ok := byID[d.FolderID]; ok {
			f.Decks = append(f.Decks, d)
		}
	}

	// Subtrees are copied bottom-up so each folder's Children are complete
	// before the folder itself is copied into its parent.
	var attach func(f *model.Folder)
	attach = func(f *model.Folder) {
		for _, child := range childrenOf[f.ID] {
			attach(child)
			f.Children = append(f.Children, *child)
		}
	}

	var roots []model.Folder
	for i := range flat {
		f := &flat[i]
		if f.ParentID != "" {
			continue
		}
		attach(f)
		roots = append(roots, *f)
	}

	return roots
}
