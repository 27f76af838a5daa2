package file

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudlockr/cloudlockr/internal/apperrors"
	"github.com/cloudlockr/cloudlockr/internal/models"
	"github.com/cloudlockr/cloudlockr/internal/repository/postgres"
	"github.com/cloudlockr/cloudlockr/internal/testutil"
)

func Test_FileService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Begin new db transaction, create service and a user owning the files
	// Rollback transaction when test stops
	withTx := func(t *testing.T, fn func(s *FileService, owner models.User)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			userRepo := &postgres.UserRepo{DB: tx}
			fileRepo := &postgres.FileRepo{DB: tx}

			owner, err := userRepo.CreateUser(t.Context(), "owner@email.com", "hashedpassword123")
			require.NoError(t, err, "owner should be created without errors")

			s, err := NewService(fileRepo, userRepo)
			require.NoError(t, err, "file service could't be started", err)

			fn(s, owner)
		})
	}

	requireAppError := func(t *testing.T, err error, kind apperrors.Kind, fields ...apperrors.FieldError) {
		t.Helper()

		require.Error(t, err)
		var appErr *apperrors.Error
		require.True(t, errors.As(err, &appErr), "error should be an app error")
		require.Equal(t, kind, appErr.Kind)
		require.Equal(t, fields, appErr.Fields)
	}

	t.Run("CreateMetadata", func(t *testing.T) {
		t.Run("create ok", func(t *testing.T) {
			withTx(t, func(s *FileService, owner models.User) {
				file, err := s.CreateMetadata(t.Context(), owner.ID, "notes.txt", "txt")

				require.NoError(t, err)
				assert.Equal(t, owner.ID, file.OwnerID)
				assert.Equal(t, "notes.txt", file.Name)
				assert.Equal(t, "txt", file.FileType)
				assert.Equal(t, 0, file.NumBlobs)
			})
		})

		t.Run("empty name or type", func(t *testing.T) {
			withTx(t, func(s *FileService, owner models.User) {
				for _, inputs := range [][2]string{{"", "txt"}, {"notes.txt", ""}, {"", ""}} {
					_, err := s.CreateMetadata(t.Context(), owner.ID, inputs[0], inputs[1])

					requireAppError(t, err, apperrors.KindNotFound,
						apperrors.FieldError{Field: "file", Message: "Invalid fileName/fileType"},
					)
				}
			})
		})

		t.Run("unknown owner", func(t *testing.T) {
			withTx(t, func(s *FileService, owner models.User) {
				_, err := s.CreateMetadata(t.Context(), uuid.New(), "notes.txt", "txt")

				requireAppError(t, err, apperrors.KindNotFound,
					apperrors.FieldError{Field: "user", Message: "User doesn't exist"},
				)
			})
		})
	})

	t.Run("StoreBlob", func(t *testing.T) {
		t.Run("append and overwrite", func(t *testing.T) {
			withTx(t, func(s *FileService, owner models.User) {
				file, err := s.CreateMetadata(t.Context(), owner.ID, "notes.txt", "txt")
				require.NoError(t, err)
				fileID := file.ID.String()

				// Index equal to the count appends
				require.NoError(t, s.StoreBlob(t.Context(), fileID, 0, "first"))
				require.NoError(t, s.StoreBlob(t.Context(), fileID, 1, "second"))

				numBlobs, err := s.RetrieveMetadata(t.Context(), fileID)
				require.NoError(t, err)
				require.Equal(t, 2, numBlobs)

				// Index below the count overwrites
				require.NoError(t, s.StoreBlob(t.Context(), fileID, 0, "rewritten"))

				data, err := s.RetrieveBlob(t.Context(), fileID, 0)
				require.NoError(t, err)
				assert.Equal(t, "rewritten", data)

				data, err = s.RetrieveBlob(t.Context(), fileID, 1)
				require.NoError(t, err)
				assert.Equal(t, "second", data)

				numBlobs, err = s.RetrieveMetadata(t.Context(), fileID)
				require.NoError(t, err)
				assert.Equal(t, 2, numBlobs, "overwrite should not change blob count")
			})
		})

		t.Run("index past the end rejected", func(t *testing.T) {
			withTx(t, func(s *FileService, owner models.User) {
				file, err := s.CreateMetadata(t.Context(), owner.ID, "notes.txt", "txt")
				require.NoError(t, err)

				err = s.StoreBlob(t.Context(), file.ID.String(), 1, "gap")

				requireAppError(t, err, apperrors.KindNotFound,
					apperrors.FieldError{Field: "file", Message: "Invalid blob number"},
				)
			})
		})

		t.Run("negative index rejected", func(t *testing.T) {
			withTx(t, func(s *FileService, owner models.User) {
				file, err := s.CreateMetadata(t.Context(), owner.ID, "notes.txt", "txt")
				require.NoError(t, err)

				err = s.StoreBlob(t.Context(), file.ID.String(), -1, "data")

				requireAppError(t, err, apperrors.KindNotFound,
					apperrors.FieldError{Field: "file", Message: "Invalid blob number"},
				)
			})
		})

		t.Run("malformed file id", func(t *testing.T) {
			withTx(t, func(s *FileService, owner models.User) {
				err := s.StoreBlob(t.Context(), "not-a-uuid", 0, "data")

				requireAppError(t, err, apperrors.KindNotFound,
					apperrors.FieldError{Field: "file", Message: "fileId is not valid UUID"},
				)
			})
		})

		t.Run("unknown file", func(t *testing.T) {
			withTx(t, func(s *FileService, owner models.User) {
				err := s.StoreBlob(t.Context(), uuid.NewString(), 0, "data")

				requireAppError(t, err, apperrors.KindNotFound,
					apperrors.FieldError{Field: "file", Message: "File doesn't exist in database"},
				)
			})
		})
	})

	t.Run("RetrieveBlob", func(t *testing.T) {
		t.Run("index out of range", func(t *testing.T) {
			withTx(t, func(s *FileService, owner models.User) {
				file, err := s.CreateMetadata(t.Context(), owner.ID, "notes.txt", "txt")
				require.NoError(t, err)
				require.NoError(t, s.StoreBlob(t.Context(), file.ID.String(), 0, "only"))

				// The append index is valid for store but not for retrieve
				_, err = s.RetrieveBlob(t.Context(), file.ID.String(), 1)

				requireAppError(t, err, apperrors.KindNotFound,
					apperrors.FieldError{Field: "file", Message: "Invalid blob number"},
				)
			})
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("delete ok", func(t *testing.T) {
			withTx(t, func(s *FileService, owner models.User) {
				file, err := s.CreateMetadata(t.Context(), owner.ID, "notes.txt", "txt")
				require.NoError(t, err)

				err = s.Delete(t.Context(), file.ID.String())
				require.NoError(t, err)

				_, err = s.RetrieveMetadata(t.Context(), file.ID.String())
				requireAppError(t, err, apperrors.KindNotFound,
					apperrors.FieldError{Field: "file", Message: "File doesn't exist in database"},
				)
			})
		})

		t.Run("unknown id succeeds silently", func(t *testing.T) {
			withTx(t, func(s *FileService, owner models.User) {
				err := s.Delete(t.Context(), uuid.NewString())
				require.NoError(t, err)
			})
		})

		t.Run("malformed id", func(t *testing.T) {
			withTx(t, func(s *FileService, owner models.User) {
				err := s.Delete(t.Context(), "not-a-uuid")

				requireAppError(t, err, apperrors.KindNotFound,
					apperrors.FieldError{Field: "file", Message: "fileId is not valid UUID"},
				)
			})
		})
	})

	t.Run("ListForUser", func(t *testing.T) {
		t.Run("list metadata", func(t *testing.T) {
			withTx(t, func(s *FileService, owner models.User) {
				_, err := s.CreateMetadata(t.Context(), owner.ID, "first.txt", "txt")
				require.NoError(t, err)
				second, err := s.CreateMetadata(t.Context(), owner.ID, "second.pdf", "pdf")
				require.NoError(t, err)
				require.NoError(t, s.StoreBlob(t.Context(), second.ID.String(), 0, "content"))

				metadata, err := s.ListForUser(t.Context(), owner.ID)

				require.NoError(t, err)
				require.Len(t, metadata, 2)

				names := []string{metadata[0].Name, metadata[1].Name}
				assert.ElementsMatch(t, []string{"first.txt", "second.pdf"}, names)
				for _, m := range metadata {
					if m.Name == "second.pdf" {
						assert.Equal(t, 1, m.NumBlobs)
						assert.Equal(t, len("content"), m.Size)
					}
				}
			})
		})

		t.Run("no files", func(t *testing.T) {
			withTx(t, func(s *FileService, owner models.User) {
				metadata, err := s.ListForUser(t.Context(), owner.ID)

				require.NoError(t, err)
				require.Empty(t, metadata)
			})
		})

		t.Run("unknown user", func(t *testing.T) {
			withTx(t, func(s *FileService, owner models.User) {
				_, err := s.ListForUser(t.Context(), uuid.New())

				requireAppError(t, err, apperrors.KindValidation,
					apperrors.FieldError{Field: "user", Message: "No user with this ID"},
				)
			})
		})
	})
}
