package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FieldError(t *testing.T) {
	t.Parallel()

	t.Run("marshal as one entry object", func(t *testing.T) {
		data, err := json.Marshal(FieldError{Field: "email", Message: "Email invalid"})

		require.NoError(t, err)
		assert.JSONEq(t, `{"email": "Email invalid"}`, string(data))
	})

	t.Run("marshal list keeps order", func(t *testing.T) {
		fields := []FieldError{
			{Field: "email", Message: "Email invalid"},
			{Field: "password", Message: "Password must be at least 10 characters long"},
			{Field: "password1", Message: "Passwords do not match"},
		}

		data, err := json.Marshal(fields)

		require.NoError(t, err)
		expected := `[` +
			`{"email":"Email invalid"},` +
			`{"password":"Password must be at least 10 characters long"},` +
			`{"password1":"Passwords do not match"}]`
		assert.Equal(t, expected, string(data), "list order is part of the wire contract")
	})
}

func Test_Error(t *testing.T) {
	t.Parallel()

	t.Run("error message", func(t *testing.T) {
		err := Validation(
			FieldError{Field: "email", Message: "Email invalid"},
			FieldError{Field: "password1", Message: "Passwords do not match"},
		)

		require.Equal(t, "validation: email: Email invalid; password1: Passwords do not match", err.Error())
	})

	t.Run("empty fields allowed", func(t *testing.T) {
		err := Validation()

		require.Equal(t, "validation", err.Error())
		require.Empty(t, err.Fields)
	})

	t.Run("kinds", func(t *testing.T) {
		tests := []struct {
			err  *Error
			kind Kind
		}{
			{err: Validation(), kind: KindValidation},
			{err: Unauthenticated(), kind: KindUnauthenticated},
			{err: Forbidden(), kind: KindForbidden},
			{err: NotFound(), kind: KindNotFound},
		}

		for _, tt := range tests {
			t.Run(tt.kind.String(), func(t *testing.T) {
				require.Equal(t, tt.kind, tt.err.Kind)
			})
		}
	})

	t.Run("errors.As through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("operation failed. Err: %w", Forbidden(
			FieldError{Field: "auth", Message: "Invalid access token"},
		))

		var appErr *Error
		require.True(t, errors.As(wrapped, &appErr), "wrapped app error should be recoverable")
		require.Equal(t, KindForbidden, appErr.Kind)
	})
}
