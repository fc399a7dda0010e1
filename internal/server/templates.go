package server

import (
	"encoding/json"
	"net/http"

	"github.com/mosaic-portal/mosaic/internal/auth"
	"github.com/mosaic-portal/mosaic/internal/dataset"
	"github.com/mosaic-portal/mosaic/internal/provisioning"
)

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var def dataset.Definition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := provisioning.ValidateDefinition(def); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity := auth.FromContext(r.Context())
	tpl, err := s.provisioner.Provision(r.Context(), def, identity.UserID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, tpl)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	tpls, err := s.templates.ListTemplates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	writeJSON(w, http.StatusOK, tpls)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tpl, err := s.templates.GetTemplate(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), "template not found")
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// handleDeleteTemplate tears down the external resources best-effort, then
// removes the record. Admin only.
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromContext(r.Context())
	if !identity.IsAdmin() {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tpl, err := s.templates.GetTemplate(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), "template not found")
		return
	}

	s.provisioner.Deprovision(r.Context(), tpl)

	if err := s.templates.DeleteTemplate(r.Context(), id); err != nil {
		writeError(w, storeStatus(err), "failed to delete template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
