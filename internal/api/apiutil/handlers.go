package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/courtbook/courtbook/internal/authz"
	"github.com/courtbook/courtbook/internal/domain"
)

var validate = validator.New()

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

// DecodeJSON decodes a single JSON object into dst, rejecting unknown fields
// and trailing data, then applies dst's validate tags.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return validate.Struct(dst)
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

type errorResponse struct {
	Message string `json:"message"`
}

// WriteError maps engine errors onto HTTP statuses: validation 400,
// unauthenticated 401, forbidden 403, not found 404, conflict 409, everything
// else a logged 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var herr HandlerError
	switch {
	case errors.As(err, &herr):
		if herr.Status >= http.StatusInternalServerError {
			log.Ctx(r.Context()).Error().Err(herr.Err).Msg(herr.Message)
		}
		writeErrorResponse(w, herr.Status, herr.Message)
	case errors.Is(err, domain.ErrValidation):
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, authz.ErrUnauthenticated):
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, authz.ErrForbidden):
		writeErrorResponse(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrNoActiveCourt):
		writeErrorResponse(w, http.StatusConflict, err.Error())
	default:
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeErrorResponse(w, http.StatusBadRequest, verrs.Error())
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		writeErrorResponse(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, errorResponse{Message: message})
}

// ActorFromRequest extracts the actor placed on the context by the WithActor
// middleware. The false return means the request is unauthenticated.
func ActorFromRequest(r *http.Request) (authz.Actor, bool) {
	return authz.ActorFromContext(r.Context())
}

// RequireActor writes a 401 and returns false when no actor is present.
func RequireActor(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	actor, ok := ActorFromRequest(r)
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return authz.Actor{}, false
	}
	return actor, true
}

// RequireOperator writes 401/403 and returns false unless the actor holds the
// vendor or admin role.
func RequireOperator(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	actor, ok := RequireActor(w, r)
	if !ok {
		return authz.Actor{}, false
	}
	if err := authz.RequireOperator(actor); err != nil {
		writeErrorResponse(w, http.StatusForbidden, "Forbidden")
		return authz.Actor{}, false
	}
	return actor, true
}

// RequireAdmin writes 401/403 and returns false unless the actor is admin.
func RequireAdmin(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	actor, ok := RequireActor(w, r)
	if !ok {
		return authz.Actor{}, false
	}
	if err := authz.RequireAdmin(actor); err != nil {
		writeErrorResponse(w, http.StatusForbidden, "Forbidden")
		return authz.Actor{}, false
	}
	return actor, true
}
