package models

import (
	"time"

	"github.com/google/uuid"
)

// File holds uploaded file metadata plus the data itself, chunked into an
// ordered list of blobs. NumBlobs always equals len(Blobs); listings carry
// metadata only and leave Blobs nil.
type File struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	FileType  string
	Size      int
	NumBlobs  int
	Blobs     []string
}

// FileMetadata is the listing view of a file, without blob data
type FileMetadata struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	FileType  string    `json:"fileType"`
	Size      int       `json:"size"`
	NumBlobs  int       `json:"numBlobs"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (f File) Metadata() FileMetadata {
	return FileMetadata{
		ID:        f.ID,
		Name:      f.Name,
		FileType:  f.FileType,
		Size:      f.Size,
		NumBlobs:  f.NumBlobs,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}
