package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/cloudlockr/cloudlockr/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with email exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, email string, hashedPassword string) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Delete user and everything it owns
	// Deleting an unknown user is not an error
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// File repository interface
type FileRepo interface {
	// Create file metadata with empty blob list
	CreateFile(ctx context.Context, ownerID uuid.UUID, name string, fileType string) (models.File, error)

	// Get file with blob data
	// If file not found must return apperrors.ErrFileNotFound
	GetFile(ctx context.Context, fileID uuid.UUID) (models.File, error)

	// Replace file blobs; num_blobs and size are recalculated from the list
	UpdateBlobs(ctx context.Context, fileID uuid.UUID, blobs []string) (models.File, error)

	// List metadata of all files owned by the user, newest first
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.File, error)

	// Delete file; deleting an unknown file is not an error
	DeleteFile(ctx context.Context, fileID uuid.UUID) error
}

// Storage combines all repositories backed by the same database
type Storage interface {
	User() UserRepo
	File() FileRepo
}
