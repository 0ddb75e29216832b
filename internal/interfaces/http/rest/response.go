package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "hackverse-mindmap/internal/errors"
)

// errorBody is the error payload. Clients read the "detail" key.
type errorBody struct {
	Detail string `json:"detail" example:"Resource not found"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to its status code and writes {"detail": message}.
// Internal errors are logged and answered with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	detail := apperrors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Int("status", status),
			zap.Error(err))
		if status == http.StatusInternalServerError {
			detail = "An internal error occurred"
		}
	}
	WriteJSON(w, status, errorBody{Detail: detail})
}

// decodeBody decodes the JSON request body into dst and validates its
// struct tags.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("Invalid request body").WithCause(err)
	}
	if err := validate.Struct(dst); err != nil {
		return apperrors.NewValidationError("Invalid request body").WithDetails(validationDetails(err)).WithCause(err)
	}
	return nil
}

func validationDetails(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	return fe.Field() + " failed on the '" + fe.Tag() + "' rule"
}
