package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/deck-hub/internal/apperror"
	"github.com/sakif/deck-hub/internal/model"
	"github.com/sakif/deck-hub/internal/repository"
)

// compile-time check that *DB implements repository.FolderRepository
var _ repository.FolderRepository = (*DB)(nil)

// CreateFolder inserts a new folder.
func (db *DB) CreateFolder(ctx context.Context, folder *model.Folder) error {
	folder.ID = xid.New().String()
	now := time.Now()
	folder.CreatedAt = now
	folder.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO folders (id, name, user_id, parent_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		folder.ID,
		folder.Name,
		folder.UserID,
		nullableString(folder.ParentID),
		folder.CreatedAt,
		folder.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating folder: %w", err)
	}

	return nil
}

// GetFolderByID retrieves a single folder row.
func (db *DB) GetFolderByID(ctx context.Context, id string) (*model.Folder, error) {
	var (
		f        model.Folder
		parentID sql.NullString
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, user_id, parent_id, created_at, updated_at
		 FROM folders WHERE id = ?`,
		id,
	).Scan(
		&f.ID,
		&f.Name,
		&f.UserID,
		&parentID,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("folder", id)
		}
		return nil, fmt.Errorf("sqlite: getting folder %s: %w", id, err)
	}

	f.ParentID = parentID.String
	return &f, nil
}

// ListFoldersByUser returns all of a user's folders, oldest first. The
// service assembles these flat rows into a tree.
func (db *DB) ListFoldersByUser(ctx context.Context, userID string) ([]model.Folder, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, user_id, parent_id, created_at, updated_at
		 FROM folders
		 WHERE user_id = ?
		 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing folders: %w", err)
	}
	defer rows.Close()

	var folders []model.Folder
	for rows.Next() {
		var (
			f        model.Folder
			parentID sql.NullString
		)
		if err := rows.Scan(
			&f.ID, &f.Name, &f.UserID, &parentID, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning folder row: %w", err)
		}
		f.ParentID = parentID.String
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating folders: %w", err)
	}

	return folders, nil
}

// UpdateFolder saves the folder's name and parent. Ownership (user_id) is
// immutable and deliberately not part of the statement.
func (db *DB) UpdateFolder(ctx context.Context, folder *model.Folder) error {
	folder.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE folders SET name = ?, parent_id = ?, updated_at = ?
		 WHERE id = ?`,
		folder.Name,
		nullableString(folder.ParentID),
		folder.UpdatedAt,
		folder.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating folder %s: %w", folder.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("folder", folder.ID)
	}

	return nil
}

// HasContents reports whether the folder has child folders or decks.
func (db *DB) HasContents(ctx context.Context, id string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM folders WHERE parent_id = ?)
		      + (SELECT COUNT(*) FROM decks WHERE folder_id = ?)`,
		id, id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking folder contents %s: %w", id, err)
	}
	return count > 0, nil
}

// DeleteFolder removes a single folder row.
func (db *DB) DeleteFolder(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting folder %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("folder", id)
	}

	return nil
}

// DeleteFolderCascade removes the folder and every descendant folder in one
// transaction. Decks inside the subtree are re-parented to no folder rather
// than deleted — folder cleanup must never destroy a user's decks.
//
// Deleting the root is enough to take the whole subtree with it: the
// self-referential parent_id foreign key carries ON DELETE CASCADE. The decks
// are detached first via a recursive walk of the subtree, since their own
// folder_id reference would otherwise only SET NULL for the folders being
// deleted — which is the same outcome, but doing it explicitly keeps the deck
// update and the folder delete in one transaction.
func (db *DB) DeleteFolderCascade(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`WITH RECURSIVE subtree(id) AS (
			SELECT id FROM folders WHERE id = ?
			UNION ALL
			SELECT f.id FROM folders f JOIN subtree s ON f.parent_id = s.id
		)
		UPDATE decks SET folder_id = NULL WHERE folder_id IN (SELECT id FROM subtree)`,
		id,
	); err != nil {
		return fmt.Errorf("sqlite: detaching decks under folder %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting folder %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("folder", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing folder deletion: %w", err)
	}

	return nil
}
