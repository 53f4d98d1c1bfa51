package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/parcelforge/ratekeeper/internal/rules"
	"github.com/parcelforge/ratekeeper/internal/types"
)

// fieldInfo describes one catalog field for the rule builder UI.
type fieldInfo struct {
	Name      string           `json:"name"`
	Type      string           `json:"type"`
	Operators []types.Operator `json:"operators"`
}

func (s *Service) handleFields(w http.ResponseWriter, r *http.Request) {
	entries := rules.Fields()
	fields := make([]fieldInfo, 0, len(entries))
	for _, entry := range entries {
		fields = append(fields, fieldInfo{
			Name:      entry.Name,
			Type:      strings.ToUpper(entry.Type.String()),
			Operators: rules.LegalOperators(entry.Type),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"fields": fields})
}

func (s *Service) handleValidateRule(w http.ResponseWriter, r *http.Request) {
	var rule types.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	respondJSON(w, http.StatusOK, rules.ValidateRule(rule))
}

func (s *Service) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.store.List()
	if err != nil {
		s.log.Error("failed to list groups", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list groups")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

func (s *Service) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var group types.RuleGroup
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	validation := rules.ValidateGroup(group)
	if !validation.IsValid {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"validation": validation,
		})
		return
	}

	if err := s.store.Create(&group); err != nil {
		if errors.Is(err, types.ErrGroupExists) {
			respondError(w, http.StatusConflict, "group already exists")
			return
		}
		s.log.Error("failed to create group", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create group")
		return
	}

	s.log.Info("rule group created", "group_id", group.GroupID, "rules", len(group.Rules))
	respondJSON(w, http.StatusCreated, group)
}

func (s *Service) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	id := types.GroupID(chi.URLParam(r, "groupID"))

	group, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, types.ErrGroupNotFound) {
			respondError(w, http.StatusNotFound, "group not found")
			return
		}
		s.log.Error("failed to load group", "group_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load group")
		return
	}
	respondJSON(w, http.StatusOK, group)
}

func (s *Service) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	id := types.GroupID(chi.URLParam(r, "groupID"))

	var group types.RuleGroup
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Path wins over any ID in the body.
	group.GroupID = id

	validation := rules.ValidateGroup(group)
	if !validation.IsValid {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"validation": validation,
		})
		return
	}

	if err := s.store.Update(&group); err != nil {
		if errors.Is(err, types.ErrGroupNotFound) {
			respondError(w, http.StatusNotFound, "group not found")
			return
		}
		s.log.Error("failed to update group", "group_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update group")
		return
	}

	respondJSON(w, http.StatusOK, group)
}

func (s *Service) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id := types.GroupID(chi.URLParam(r, "groupID"))

	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, types.ErrGroupNotFound) {
			respondError(w, http.StatusNotFound, "group not found")
			return
		}
		s.log.Error("failed to delete group", "group_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete group")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// previewRequest carries one order's context and base amount.
// Groups are optional for /v1/preview; when omitted all stored groups run.
type previewRequest struct {
	Context    types.Context     `json:"context"`
	BaseAmount float64           `json:"base_amount"`
	Groups     []types.RuleGroup `json:"groups,omitempty"`
}

func (s *Service) handleGroupPreview(w http.ResponseWriter, r *http.Request) {
	id := types.GroupID(chi.URLParam(r, "groupID"))

	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := checkContext(req.Context); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	group, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, types.ErrGroupNotFound) {
			respondError(w, http.StatusNotFound, "group not found")
			return
		}
		s.log.Error("failed to load group", "group_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load group")
		return
	}

	preview := rules.PreviewAdjustments([]types.RuleGroup{*group}, req.Context, req.BaseAmount)
	respondJSON(w, http.StatusOK, preview)
}

func (s *Service) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := checkContext(req.Context); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	groups := req.Groups
	if len(groups) == 0 {
		stored, err := s.store.List()
		if err != nil {
			s.log.Error("failed to list groups", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to list groups")
			return
		}
		groups = make([]types.RuleGroup, 0, len(stored))
		for _, g := range stored {
			groups = append(groups, *g)
		}
	}

	if len(groups) > s.cfg.MaxPreviewGroups {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("too many groups: %d exceeds limit of %d", len(groups), s.cfg.MaxPreviewGroups))
		return
	}

	preview := rules.PreviewAdjustments(groups, req.Context, req.BaseAmount)
	respondJSON(w, http.StatusOK, preview)
}

func checkContext(ctx types.Context) error {
	if ctx == nil {
		return fmt.Errorf("context is required")
	}
	if len(ctx) > types.MaxContextFields {
		return fmt.Errorf("context has %d fields, limit is %d", len(ctx), types.MaxContextFields)
	}
	return nil
}
