package file

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cloudlockr/cloudlockr/internal/apperrors"
	"github.com/cloudlockr/cloudlockr/internal/models"
	"github.com/cloudlockr/cloudlockr/internal/repository"
)

// File service: metadata creation, chunked blob storage and retrieval,
// listing and deletion. File data arrives as an ordered list of blobs that
// are written one index at a time.
type FileService struct {
	fileRepo repository.FileRepo
	userRepo repository.UserRepo
}

func NewService(fileRepo repository.FileRepo, userRepo repository.UserRepo) (*FileService, error) {
	if fileRepo == nil || userRepo == nil {
		return nil, errors.New("repos must not be nil")
	}

	return &FileService{
		fileRepo: fileRepo,
		userRepo: userRepo,
	}, nil
}

// CreateMetadata registers a new empty file owned by the user
func (s *FileService) CreateMetadata(ctx context.Context, ownerID uuid.UUID, name string, fileType string) (models.File, error) {
	if name == "" || fileType == "" {
		return models.File{}, apperrors.NotFound(
			apperrors.FieldError{Field: "file", Message: "Invalid fileName/fileType"},
		)
	}

	_, err := s.userRepo.GetUserByID(ctx, ownerID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.File{}, apperrors.NotFound(
			apperrors.FieldError{Field: "user", Message: "User doesn't exist"},
		)
	default:
		return models.File{}, fmt.Errorf("can't look up user. Err: %w", err)
	}

	file, err := s.fileRepo.CreateFile(ctx, ownerID, name, fileType)
	if err != nil {
		return models.File{}, fmt.Errorf("can't create file. Err: %w", err)
	}

	return file, nil
}

// StoreBlob writes one blob of file data at the given index. An index below
// the current count overwrites that blob, an index equal to the count
// appends; anything past the end is rejected.
func (s *FileService) StoreBlob(ctx context.Context, fileID string, blobNumber int, data string) error {
	file, err := s.getFile(ctx, fileID)
	if err != nil {
		return err
	}

	if blobNumber > file.NumBlobs || blobNumber < 0 {
		return apperrors.NotFound(
			apperrors.FieldError{Field: "file", Message: "Invalid blob number"},
		)
	}

	blobs := file.Blobs
	if blobNumber < file.NumBlobs {
		blobs[blobNumber] = data
	} else {
		blobs = append(blobs, data)
	}

	if _, err := s.fileRepo.UpdateBlobs(ctx, file.ID, blobs); err != nil {
		return fmt.Errorf("can't store blob. Err: %w", err)
	}

	return nil
}

// RetrieveMetadata returns how many blobs the file is split into
func (s *FileService) RetrieveMetadata(ctx context.Context, fileID string) (numBlobs int, err error) {
	file, err := s.getFile(ctx, fileID)
	if err != nil {
		return 0, err
	}

	return file.NumBlobs, nil
}

// RetrieveBlob returns one blob of file data by index
func (s *FileService) RetrieveBlob(ctx context.Context, fileID string, blobNumber int) (string, error) {
	file, err := s.getFile(ctx, fileID)
	if err != nil {
		return "", err
	}

	if blobNumber >= file.NumBlobs || blobNumber < 0 {
		return "", apperrors.NotFound(
			apperrors.FieldError{Field: "file", Message: "Invalid blob number"},
		)
	}

	return file.Blobs[blobNumber], nil
}

// Delete removes the file. Unknown but well formed ids succeed silently.
func (s *FileService) Delete(ctx context.Context, fileID string) error {
	id, err := uuid.Parse(fileID)
	if err != nil {
		return apperrors.NotFound(
			apperrors.FieldError{Field: "file", Message: "fileId is not valid UUID"},
		)
	}

	if err := s.fileRepo.DeleteFile(ctx, id); err != nil {
		return fmt.Errorf("can't delete file. Err: %w", err)
	}

	return nil
}

// ListForUser returns metadata of every file the user owns
func (s *FileService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.FileMetadata, error) {
	_, err := s.userRepo.GetUserByID(ctx, userID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserNotFound):
		return nil, apperrors.Validation(
			apperrors.FieldError{Field: "user", Message: "No user with this ID"},
		)
	default:
		return nil, fmt.Errorf("can't look up user. Err: %w", err)
	}

	files, err := s.fileRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("can't list files. Err: %w", err)
	}

	metadata := make([]models.FileMetadata, 0, len(files))
	for _, f := range files {
		metadata = append(metadata, f.Metadata())
	}

	return metadata, nil
}

func (s *FileService) getFile(ctx context.Context, fileID string) (models.File, error) {
	id, err := uuid.Parse(fileID)
	if err != nil {
		return models.File{}, apperrors.NotFound(
			apperrors.FieldError{Field: "file", Message: "fileId is not valid UUID"},
		)
	}

	file, err := s.fileRepo.GetFile(ctx, id)
	switch {
	case err == nil:
		return file, nil
	case errors.Is(err, apperrors.ErrFileNotFound):
		return models.File{}, apperrors.NotFound(
			apperrors.FieldError{Field: "file", Message: "File doesn't exist in database"},
		)
	default:
		return models.File{}, fmt.Errorf("can't load file. Err: %w", err)
	}
}
