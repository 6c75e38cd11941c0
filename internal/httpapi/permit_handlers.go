package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"bauliver.org/internal/audit"
	"bauliver.org/internal/auth"
	"bauliver.org/internal/permit"
)

type permitCreateRequest struct {
	CustomerName string  `json:"customer_name"`
	Address      string  `json:"address"`
	SystemSizeKW float64 `json:"system_size_kw"`
	Status       string  `json:"status"`
	PDFURL       string  `json:"pdf_url"`
}

type permitUpdateRequest struct {
	CustomerName *string  `json:"customer_name"`
	Address      *string  `json:"address"`
	SystemSizeKW *float64 `json:"system_size_kw"`
	Status       *string  `json:"status"`
	PDFURL       *string  `json:"pdf_url"`
}

func (a *API) handlePermitsCollection(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	switch r.Method {
	case http.MethodGet:
		permits, err := a.permits.List(r.Context(), actor)
		if err != nil {
			handlePermitError(w, r, err)
			return
		}
		if permits == nil {
			permits = []*permit.Permit{}
		}
		writeJSON(w, http.StatusOK, permits)
	case http.MethodPost:
		var req permitCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}
		created, err := a.permits.Create(r.Context(), actor, permit.CreateInput{
			CustomerName: req.CustomerName,
			Address:      req.Address,
			SystemSizeKW: req.SystemSizeKW,
			Status:       req.Status,
			PDFURL:       req.PDFURL,
		})
		if err != nil {
			handlePermitError(w, r, err)
			return
		}
		audit.LogEvent(r.Context(), "permit.created", map[string]any{"permit_id": created.ID})
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handlePermitResource(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/permits/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := a.permits.Get(r.Context(), actor, id)
		if err != nil {
			handlePermitError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		var req permitUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}
		updated, err := a.permits.Update(r.Context(), actor, id, permit.UpdateInput{
			CustomerName: req.CustomerName,
			Address:      req.Address,
			SystemSizeKW: req.SystemSizeKW,
			Status:       req.Status,
			PDFURL:       req.PDFURL,
		})
		if err != nil {
			handlePermitError(w, r, err)
			return
		}
		audit.LogEvent(r.Context(), "permit.updated", map[string]any{"permit_id": updated.ID})
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := a.permits.Delete(r.Context(), actor, id); err != nil {
			handlePermitError(w, r, err)
			return
		}
		audit.LogEvent(r.Context(), "permit.deleted", map[string]any{"permit_id": id})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func handlePermitError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, permit.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "permit not found")
	case errors.Is(err, permit.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "not authorized to access this permit")
	case errors.Is(err, permit.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
