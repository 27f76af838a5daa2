package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cloudlockr/cloudlockr/internal/apperrors"
	"github.com/cloudlockr/cloudlockr/internal/handlers/authctx"
	"github.com/cloudlockr/cloudlockr/internal/handlers/render"
)

// Reaching a protected handler without claims in the context means the auth
// middleware was not applied; rendered as an internal error
var errMissingClaims = errors.New("no token claims in request context")

type FileHandler struct {
	fileService FileService
}

func NewFile(fileService FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

func (h *FileHandler) create(w http.ResponseWriter, r *http.Request) {
	type createRequest struct {
		FileName string `json:"fileName" validate:"required"`
		FileType string `json:"fileType" validate:"required"`
	}
	type createResponse struct {
		FileID   string `json:"fileId"`
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}

	claims, ok := authctx.FromContext(r.Context())
	if !ok {
		render.Error(w, errMissingClaims)
		return
	}

	data, err := render.BindAndValidate[createRequest](w, r)
	if err != nil {
		return
	}

	file, err := h.fileService.CreateMetadata(r.Context(), claims.UserID, data.FileName, data.FileType)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, createResponse{
		FileID:   file.ID.String(),
		FileName: file.Name,
		FileType: file.FileType,
	})
}

func (h *FileHandler) storeBlob(w http.ResponseWriter, r *http.Request) {
	type storeRequest struct {
		FileData string `json:"fileData" validate:"required"`
	}
	type storeResponse struct {
		Message string `json:"message"`
	}

	blobNumber, err := blobNumber(r)
	if err != nil {
		render.Error(w, err)
		return
	}

	data, err := render.BindAndValidate[storeRequest](w, r)
	if err != nil {
		return
	}

	err = h.fileService.StoreBlob(r.Context(), r.PathValue("fileId"), blobNumber, data.FileData)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, storeResponse{Message: "Stored blob"})
}

func (h *FileHandler) retrieveBlob(w http.ResponseWriter, r *http.Request) {
	type blobResponse struct {
		FileData string `json:"fileData"`
	}

	blobNumber, err := blobNumber(r)
	if err != nil {
		render.Error(w, err)
		return
	}

	data, err := h.fileService.RetrieveBlob(r.Context(), r.PathValue("fileId"), blobNumber)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, blobResponse{FileData: data})
}

func (h *FileHandler) metadata(w http.ResponseWriter, r *http.Request) {
	type metadataResponse struct {
		NumBlobs int `json:"numBlobs"`
	}

	numBlobs, err := h.fileService.RetrieveMetadata(r.Context(), r.PathValue("fileId"))
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, metadataResponse{NumBlobs: numBlobs})
}

func (h *FileHandler) delete(w http.ResponseWriter, r *http.Request) {
	type deleteResponse struct {
		Message string `json:"message"`
	}

	err := h.fileService.Delete(r.Context(), r.PathValue("fileId"))
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, deleteResponse{Message: "Deleted file"})
}

func blobNumber(r *http.Request) (int, error) {
	n, err := strconv.Atoi(r.PathValue("blobNumber"))
	if err != nil {
		return 0, apperrors.NotFound(
			apperrors.FieldError{Field: "file", Message: "Invalid blob number"},
		)
	}
	return n, nil
}
