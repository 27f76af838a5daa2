package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cloudlockr/cloudlockr/internal/testutil"
)

func Test_FileHandler(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	rd := testutil.StartRedisContainer(t)
	t.Cleanup(rd.Terminate)

	createFile := func(t *testing.T, url string, accessToken string) string {
		t.Helper()

		code, body := doRequest(t, http.MethodPost, url+"/file", map[string]string{
			"Authorization": "Bearer " + accessToken,
			"Content-Type":  "application/json",
		}, `{"fileName": "notes.txt", "fileType": "txt"}`)
		require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)

		var created struct {
			FileID   string `json:"fileId"`
			FileName string `json:"fileName"`
			FileType string `json:"fileType"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &created))
		require.Equal(t, "notes.txt", created.FileName)
		require.Equal(t, "txt", created.FileType)
		require.NotEmpty(t, created.FileID)
		return created.FileID
	}

	t.Run("create file requires auth", func(t *testing.T) {
		withServer(pg, rd, t, func(url string) {
			code, body := doRequest(t, http.MethodPost, url+"/file", map[string]string{
				"Content-Type": "application/json",
			}, `{"fileName": "notes.txt", "fileType": "txt"}`)

			require.Equalf(t, http.StatusUnauthorized, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `{
				"errors": [{"auth": "No access token"}]
			}`, body)
		})
	})

	t.Run("create file validates body", func(t *testing.T) {
		withServer(pg, rd, t, func(url string) {
			session := registerUser(t, url, "user0@email.com", "1234567890")

			code, body := doRequest(t, http.MethodPost, url+"/file", map[string]string{
				"Authorization": "Bearer " + session.AccessToken,
				"Content-Type":  "application/json",
			}, `{"fileName": "notes.txt"}`)

			require.Equalf(t, http.StatusUnprocessableEntity, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `{
				"errors": [{"fileType": "This field is required"}]
			}`, body)
		})
	})

	t.Run("store and retrieve blobs", func(t *testing.T) {
		withServer(pg, rd, t, func(url string) {
			session := registerUser(t, url, "user0@email.com", "1234567890")
			fileID := createFile(t, url, session.AccessToken)

			// Blob endpoints are open, the hardware client has no credentials
			code, body := doRequest(t, http.MethodPost, url+"/file/"+fileID+"/0", map[string]string{
				"Content-Type": "application/json",
			}, `{"fileData": "encrypted-chunk-0"}`)
			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `{"message": "Stored blob"}`, body)

			code, body = doRequest(t, http.MethodPost, url+"/file/"+fileID+"/1", map[string]string{
				"Content-Type": "application/json",
			}, `{"fileData": "encrypted-chunk-1"}`)
			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)

			// Metadata reports the blob count
			code, body = doRequest(t, http.MethodGet, url+"/file/"+fileID, nil, "")
			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `{"numBlobs": 2}`, body)

			// Retrieve blobs one by one
			code, body = doRequest(t, http.MethodGet, url+"/file/"+fileID+"/0", nil, "")
			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `{"fileData": "encrypted-chunk-0"}`, body)

			code, body = doRequest(t, http.MethodGet, url+"/file/"+fileID+"/1", nil, "")
			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `{"fileData": "encrypted-chunk-1"}`, body)
		})
	})

	t.Run("store blob past the end", func(t *testing.T) {
		withServer(pg, rd, t, func(url string) {
			session := registerUser(t, url, "user0@email.com", "1234567890")
			fileID := createFile(t, url, session.AccessToken)

			code, body := doRequest(t, http.MethodPost, url+"/file/"+fileID+"/5", map[string]string{
				"Content-Type": "application/json",
			}, `{"fileData": "chunk"}`)

			require.Equalf(t, http.StatusNotFound, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `{
				"errors": [{"file": "Invalid blob number"}]
			}`, body)
		})
	})

	t.Run("blob number not a number", func(t *testing.T) {
		withServer(pg, rd, t, func(url string) {
			session := registerUser(t, url, "user0@email.com", "1234567890")
			fileID := createFile(t, url, session.AccessToken)

			code, body := doRequest(t, http.MethodGet, url+"/file/"+fileID+"/abc", nil, "")

			require.Equalf(t, http.StatusNotFound, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `{
				"errors": [{"file": "Invalid blob number"}]
			}`, body)
		})
	})

	t.Run("unknown file", func(t *testing.T) {
		withServer(pg, rd, t, func(url string) {
			code, body := doRequest(t, http.MethodGet, url+"/file/"+uuid.NewString(), nil, "")

			require.Equalf(t, http.StatusNotFound, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `{
				"errors": [{"file": "File doesn't exist in database"}]
			}`, body)
		})
	})

	t.Run("malformed file id", func(t *testing.T) {
		withServer(pg, rd, t, func(url string) {
			code, body := doRequest(t, http.MethodGet, url+"/file/not-a-uuid", nil, "")

			require.Equalf(t, http.StatusNotFound, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `{
				"errors": [{"file": "fileId is not valid UUID"}]
			}`, body)
		})
	})

	t.Run("delete file", func(t *testing.T) {
		withServer(pg, rd, t, func(url string) {
			session := registerUser(t, url, "user0@email.com", "1234567890")
			fileID := createFile(t, url, session.AccessToken)

			code, body := doRequest(t, http.MethodDelete, url+"/file/"+fileID, map[string]string{
				"Authorization": "Bearer " + session.AccessToken,
			}, "")

			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `{"message": "Deleted file"}`, body)

			code, body = doRequest(t, http.MethodGet, url+"/file/"+fileID, nil, "")
			require.Equalf(t, http.StatusNotFound, code, "deleted file should be gone. Body: %s", body)
		})
	})
}
