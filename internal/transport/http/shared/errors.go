package shared

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hrdesk/internal/domain/form"
	"hrdesk/internal/requestctx"
	"hrdesk/internal/transport/http/api"
)

// Coded errors carry a stable machine code and a user-facing message.
// Status reports the HTTP status the error maps to.
type Coded interface {
	error
	Code() string
	Status() int
}

var ErrInvalidPayload = errors.New("invalid request payload")

// DecodeJSON decodes the body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrInvalidPayload
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return ErrInvalidPayload
	}
	return nil
}

func FailValidation(w http.ResponseWriter, requestID string, issues []form.Issue) {
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		map[string]any{"fields": issues},
		requestID,
	)
}

// WriteError renders err through the response envelope.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := requestctx.GetRequestID(r.Context())

	var formErr *form.Errors
	if errors.As(err, &formErr) {
		FailValidation(w, requestID, formErr.Issues())
		return
	}
	var coded Coded
	if errors.As(err, &coded) {
		api.Fail(w, coded.Status(), coded.Code(), coded.Error(), requestID)
		return
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
		return
	}
	if errors.Is(err, ErrInvalidPayload) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if errors.Is(err, pgx.ErrNoRows) {
		api.Fail(w, http.StatusNotFound, "not_found", "resource not found", requestID)
		return
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			api.Fail(w, http.StatusConflict, "conflict", "resource already exists", requestID)
			return
		case "23503":
			api.Fail(w, http.StatusBadRequest, "invalid_reference", "referenced resource does not exist", requestID)
			return
		case "22P02":
			// Malformed uuid; no row can match it.
			api.Fail(w, http.StatusNotFound, "not_found", "resource not found", requestID)
			return
		}
	}
	slog.Error("request failed", "path", r.URL.Path, "requestId", requestID, "err", err)
	api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
}
