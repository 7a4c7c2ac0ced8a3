package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/dealflow/internal/api/respond"
	"github.com/hugh/dealflow/internal/api/validation"
	"github.com/hugh/dealflow/internal/tenancy"
)

const maxBodyBytes = 1 << 20

// decode reads a JSON body into dst and validates it. It writes the 400
// response itself and returns false on failure.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			respond.Message(w, http.StatusBadRequest, "Request body is required")
			return false
		}
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if details := validation.Struct(dst); len(details) > 0 {
		respond.ValidationFailed(w, details)
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// requestContext returns the context installed by middleware.Organization.
// A missing context is a routing mistake, not a client error.
func requestContext(w http.ResponseWriter, r *http.Request) (tenancy.RequestContext, bool) {
	rc, ok := tenancy.FromContext(r.Context())
	if !ok {
		respond.Message(w, http.StatusInternalServerError, "Internal server error")
	}
	return rc, ok
}

// fieldErrors collects parse failures keyed by query parameter or body field.
// The body has already passed validation.Struct, so failures here mean the
// struct tags and the parsers disagree; they still answer 400, never a zero
// value.
type fieldErrors map[string]string

func (q fieldErrors) int(r *http.Request, key string) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		q[key] = key + " must be a non-negative integer"
		return 0
	}
	return n
}

func (q fieldErrors) uuid(r *http.Request, key string) *uuid.UUID {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		q[key] = key + " must be a valid UUID"
		return nil
	}
	return &id
}

func (q fieldErrors) id(key, raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		q[key] = key + " must be a valid UUID"
	}
	return id
}

func (q fieldErrors) bool(r *http.Request, key string) bool {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		q[key] = key + " must be true or false"
	}
	return b
}
