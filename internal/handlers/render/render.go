package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cloudlockr/cloudlockr/internal/apperrors"
)

var validate = validator.New()

func init() {
	// Report on 'TagName' json tag instead of struct name
	// Look at documentation of 'RegisterTagNameFunc' for more details
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		// skip if tag key says it should be ignored
		if name == "-" {
			return ""
		}
		return name
	})
}

// ErrorResponse is the wire shape of every failure: an ordered list of
// single-entry objects, e.g. {"errors": [{"email": "Email invalid"}]}
type ErrorResponse struct {
	Errors []apperrors.FieldError `json:"errors"`
}

func JSON(w http.ResponseWriter, data any) {
	JSONWithStatus(w, data, http.StatusOK)
}

// Error renders a service failure, mapping the error kind to a status code.
// Anything that is not an *apperrors.Error is an internal failure and must
// not leak details to the client.
func Error(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		JSONWithStatus(w, ErrorResponse{
			Errors: []apperrors.FieldError{{Field: "server", Message: "Internal server error"}},
		}, http.StatusInternalServerError)
		return
	}

	fields := appErr.Fields
	if fields == nil {
		fields = []apperrors.FieldError{}
	}
	JSONWithStatus(w, ErrorResponse{Errors: fields}, statusOf(appErr.Kind))
}

func statusOf(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusUnprocessableEntity
	case apperrors.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// BindAndValidate decodes JSON request body into type T and validates it using struct tags.
// Writes the appropriate error response itself for decoding or validation failures.
func BindAndValidate[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		Error(w, apperrors.Validation(decodeField(err)))
		return value, err
	}

	err = validate.Struct(value)
	if err != nil {
		// pretty sure cast will be ok cause expecting T is valid struct
		errs := err.(validator.ValidationErrors)
		Error(w, apperrors.Validation(validationFields(errs)...))
		return value, err
	}

	return value, nil
}

func decodeField(err error) apperrors.FieldError {
	// Try to provide more specific error message based on error type
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperrors.FieldError{
			Field:   typeErr.Field,
			Message: "Invalid data type",
		}
	}

	return apperrors.FieldError{Field: "body", Message: "Failed to parse JSON"}
}

func validationFields(errs validator.ValidationErrors) []apperrors.FieldError {
	fields := make([]apperrors.FieldError, 0, len(errs))

	// Create user-friendly error messages based on validation tag
	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "This field is required"
		case "min":
			message = fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
		default:
			message = "Invalid value"
		}

		fields = append(fields, apperrors.FieldError{Field: fieldError.Field(), Message: message})
	}

	return fields
}

// JSONWithStatus sends data as json and enforces status code
func JSONWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
