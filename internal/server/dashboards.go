package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mosaic-portal/mosaic/internal/auth"
	"github.com/mosaic-portal/mosaic/internal/store"
)

func (s *Server) handleCreateDashboard(w http.ResponseWriter, r *http.Request) {
	var params store.CreateDashboardParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(params.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	identity := auth.FromContext(r.Context())
	dash, err := s.portal.CreateDashboard(r.Context(), identity.UserID, params)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, dash)
}

func (s *Server) handleListDashboards(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromContext(r.Context())
	dashes, err := s.portal.ListDashboards(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list dashboards")
		return
	}
	writeJSON(w, http.StatusOK, dashes)
}

func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	dash, err := s.portal.GetDashboard(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), "dashboard not found")
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) handleDeleteDashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	dash, err := s.portal.GetDashboard(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), "dashboard not found")
		return
	}

	identity := auth.FromContext(r.Context())
	if dash.OwnerID != identity.UserID && !identity.IsAdmin() {
		writeError(w, http.StatusForbidden, "not the dashboard owner")
		return
	}

	if err := s.portal.DeleteDashboard(r.Context(), id); err != nil {
		writeError(w, storeStatus(err), "failed to delete dashboard")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
