package http

import (
	"errors"
	"log/slog"
	"net/http"

	"dizimo/internal/core"
	"dizimo/internal/storage"
)

func (s *Server) handleCreateContributor(w http.ResponseWriter, r *http.Request) {
	var in contributorPayload
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := core.Contributor{
		Name:       sanitizeInput(in.Name),
		Phone:      sanitizeInput(in.Phone),
		Email:      sanitizeInput(in.Email),
		Address:    sanitizeInput(in.Address),
		Occupation: sanitizeInput(in.Occupation),
		Status:     core.ContributorStatus(in.Status),
		Notes:      sanitizeInput(in.Notes),
	}
	if in.BirthDate != "" {
		d, err := parseDate(in.BirthDate)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid birth_date, expected YYYY-MM-DD")
			return
		}
		c.BirthDate = d
	}

	created, err := s.contributors.Register(r.Context(), c)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toContributorResponse(created))
}

func (s *Server) handleGetContributor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := s.contributors.Get(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Contributor lookup failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "contributor not found")
		return
	}
	writeJSON(w, http.StatusOK, toContributorResponse(*c))
}

func (s *Server) handleListContributors(w http.ResponseWriter, r *http.Request) {
	items, hasMore, err := s.contributors.List(r.Context(), s.contributorFilter(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Contributor list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}

	out := listResponse[contributorResponse]{
		Items:   make([]contributorResponse, 0, len(items)),
		HasMore: hasMore,
	}
	for _, c := range items {
		out.Items = append(out.Items, toContributorResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

type contributorUpdatePayload struct {
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	Address    *string `json:"address"`
	BirthDate  *string `json:"birth_date"`
	Occupation *string `json:"occupation"`
	Status     *string `json:"status"`
	Notes      *string `json:"notes"`
}

func (s *Server) handleUpdateContributor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in contributorUpdatePayload
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var upd storage.ContributorUpdate
	upd.Name = cleaned(in.Name)
	upd.Phone = cleaned(in.Phone)
	upd.Email = cleaned(in.Email)
	upd.Address = cleaned(in.Address)
	upd.Occupation = cleaned(in.Occupation)
	upd.Notes = cleaned(in.Notes)
	if in.Status != nil {
		status := core.ContributorStatus(*in.Status)
		upd.Status = &status
	}
	if in.BirthDate != nil {
		d, err := parseDate(*in.BirthDate)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid birth_date, expected YYYY-MM-DD")
			return
		}
		upd.BirthDate = &d
	}

	if err := s.contributors.Update(r.Context(), id, upd); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteContributor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.contributors.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrContributorInUse) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Contributor delete failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func cleaned(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitizeInput(*s)
	return &v
}
