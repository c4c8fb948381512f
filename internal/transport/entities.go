package transport

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/capstonehub/capstone-hub/internal/domain/entity"
)

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleListRecords(d *entity.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.entities.List(r.Context(), d)
		if err != nil {
			writeInternalError(w, s.logger, "failed to list records", err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func (s *Server) handleGetRecord(d *entity.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := s.entities.Get(r.Context(), d, chi.URLParam(r, "id"))
		if err != nil {
			s.writeRecordError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) handleCreateRecord(d *entity.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		rec, err := s.entities.Create(r.Context(), d, payload)
		if err != nil {
			s.writeRecordError(w, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

func (s *Server) handleUpdateRecord(d *entity.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		rec, err := s.entities.Update(r.Context(), d, chi.URLParam(r, "id"), payload)
		if err != nil {
			s.writeRecordError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) handleDeleteRecord(d *entity.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.entities.Delete(r.Context(), d, chi.URLParam(r, "id")); err != nil {
			s.writeRecordError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("%s deleted successfully", d.Label)})
	}
}

func (s *Server) handleLookup(d *entity.Descriptor, name string) http.HandlerFunc {
	values := d.Lookups[name]
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, values)
	}
}

func (s *Server) writeRecordError(w http.ResponseWriter, d *entity.Descriptor, err error) {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s not found", d.Label))
	case errors.Is(err, entity.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeInternalError(w, s.logger, "record operation failed", err)
	}
}
