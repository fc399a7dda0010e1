package server

import (
	"encoding/json"
	"net/http"

	"github.com/mosaic-portal/mosaic/internal/store"
)

func (s *Server) handleCreatePanel(w http.ResponseWriter, r *http.Request) {
	dashboardID, ok := pathID(w, r)
	if !ok {
		return
	}

	var params store.CreatePanelParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if params.PanelType == "" {
		writeError(w, http.StatusBadRequest, "panel_type is required")
		return
	}

	// Creating a panel on a missing dashboard should 404, not surface a
	// foreign key violation.
	if _, err := s.portal.GetDashboard(r.Context(), dashboardID); err != nil {
		writeError(w, storeStatus(err), "dashboard not found")
		return
	}

	panel, err := s.portal.CreatePanel(r.Context(), dashboardID, params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create panel")
		return
	}
	writeJSON(w, http.StatusCreated, panel)
}

func (s *Server) handleListPanels(w http.ResponseWriter, r *http.Request) {
	dashboardID, ok := pathID(w, r)
	if !ok {
		return
	}

	panels, err := s.portal.ListPanels(r.Context(), dashboardID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list panels")
		return
	}
	writeJSON(w, http.StatusOK, panels)
}

func (s *Server) handleGetPanel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	panel, err := s.portal.GetPanel(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), "panel not found")
		return
	}
	writeJSON(w, http.StatusOK, panel)
}

func (s *Server) handleDeletePanel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.portal.DeletePanel(r.Context(), id); err != nil {
		writeError(w, storeStatus(err), "failed to delete panel")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
