package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cloudlockr/cloudlockr/internal/apperrors"
	"github.com/cloudlockr/cloudlockr/internal/models"
)

type FileRepo struct {
	DB DBTX
}

const createFile = `-- name: CreateFile
INSERT INTO files (id, owner_id, name, file_type)
VALUES ($1, $2, $3, $4)
RETURNING id, owner_id, created_at, updated_at, name, file_type, size, num_blobs, blobs
`

func (r *FileRepo) CreateFile(ctx context.Context, ownerID uuid.UUID, name string, fileType string) (models.File, error) {
	rows, _ := r.DB.Query(ctx, createFile, uuid.New(), ownerID, name, fileType)
	file, err := pgx.CollectOneRow(rows, rowToFile)
	if err != nil {
		return file, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}

const getFile = `-- name: GetFile
SELECT id, owner_id, created_at, updated_at, name, file_type, size, num_blobs, blobs
FROM files
WHERE id = $1
`

func (r *FileRepo) GetFile(ctx context.Context, fileID uuid.UUID) (models.File, error) {
	rows, _ := r.DB.Query(ctx, getFile, fileID)
	file, err := pgx.CollectOneRow(rows, rowToFile)

	switch {
	case err == nil:
		return file, nil
	case errors.Is(err, pgx.ErrNoRows):
		return file, apperrors.ErrFileNotFound
	default:
		return file, fmt.Errorf("db error: %w", err)
	}
}

const updateBlobs = `-- name: UpdateBlobs
UPDATE files
SET blobs = $2,
    num_blobs = cardinality($2::text[]),
    size = length(array_to_string($2::text[], '')),
    updated_at = now()
WHERE id = $1
RETURNING id, owner_id, created_at, updated_at, name, file_type, size, num_blobs, blobs
`

func (r *FileRepo) UpdateBlobs(ctx context.Context, fileID uuid.UUID, blobs []string) (models.File, error) {
	rows, _ := r.DB.Query(ctx, updateBlobs, fileID, blobs)
	file, err := pgx.CollectOneRow(rows, rowToFile)

	switch {
	case err == nil:
		return file, nil
	case errors.Is(err, pgx.ErrNoRows):
		return file, apperrors.ErrFileNotFound
	default:
		return file, fmt.Errorf("db error: %w", err)
	}
}

const listByOwner = `-- name: ListByOwner
SELECT id, owner_id, created_at, updated_at, name, file_type, size, num_blobs
FROM files
WHERE owner_id = $1
ORDER BY created_at DESC
`

// List metadata only, blob data stays in the database
func (r *FileRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.File, error) {
	rows, _ := r.DB.Query(ctx, listByOwner, ownerID)
	files, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.File, error) {
		var f models.File
		err := row.Scan(&f.ID, &f.OwnerID, &f.CreatedAt, &f.UpdatedAt, &f.Name, &f.FileType, &f.Size, &f.NumBlobs)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return files, nil
}

const deleteFile = `-- name: DeleteFile
DELETE FROM files
WHERE id = $1
`

func (r *FileRepo) DeleteFile(ctx context.Context, fileID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, deleteFile, fileID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func rowToFile(row pgx.CollectableRow) (models.File, error) {
	var f models.File
	err := row.Scan(&f.ID, &f.OwnerID, &f.CreatedAt, &f.UpdatedAt, &f.Name, &f.FileType, &f.Size, &f.NumBlobs, &f.Blobs)
	return f, err
}
