package handlers

import (
	"net/http"

	"hrpipeline/internal/app"
	"hrpipeline/internal/http/metrics"
	"hrpipeline/internal/http/middleware"
	"hrpipeline/internal/http/response"
)

type CollaboratorHandler struct {
	collaborators *app.CollaboratorService
	collector     *metrics.Collector
}

func NewCollaboratorHandler(collaborators *app.CollaboratorService, collector *metrics.Collector) *CollaboratorHandler {
	return &CollaboratorHandler{collaborators: collaborators, collector: collector}
}

func (h *CollaboratorHandler) List(w http.ResponseWriter, r *http.Request) {
	collabs, err := h.collaborators.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, collabs)
}

func (h *CollaboratorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	collab, err := h.collaborators.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, collab)
}

type collaboratorStatusRequest struct {
	Status        string `json:"status"`
	AdmissionDate string `json:"admissionDate"`
}

func (h *CollaboratorHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req collaboratorStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.collaborators.SetStatus(r.Context(), id, req.Status, req.AdmissionDate)
	if err != nil {
		response.Error(w, err)
		return
	}
	if h.collector != nil {
		h.collector.IncTransitions()
	}
	response.JSON(w, http.StatusOK, updated)
}

type declineRequest struct {
	DeclineReason string `json:"declineReason"`
}

func (h *CollaboratorHandler) Decline(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	id, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req declineRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := h.collaborators.Decline(r.Context(), actorID, id, req.DeclineReason); err != nil {
		response.Error(w, err)
		return
	}
	if h.collector != nil {
		h.collector.IncTransitions()
	}
	response.JSON(w, http.StatusNoContent, nil)
}

type transferRequest struct {
	JobTitle      string `json:"jobTitle"`
	Team          string `json:"team"`
	VP            string `json:"vp"`
	HiringCompany string `json:"hiringCompany"`
	TransferDate  string `json:"transferDate"`
}

func (h *CollaboratorHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	id, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.collaborators.Transfer(r.Context(), actorID, id, app.TransferInput{
		JobTitle:      req.JobTitle,
		Team:          req.Team,
		VP:            req.VP,
		HiringCompany: req.HiringCompany,
		TransferDate:  req.TransferDate,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

type terminateRequest struct {
	TerminationDate   string `json:"terminationDate"`
	TerminationReason string `json:"terminationReason"`
}

func (h *CollaboratorHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	id, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req terminateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := h.collaborators.Terminate(r.Context(), actorID, id, req.TerminationDate, req.TerminationReason); err != nil {
		response.Error(w, err)
		return
	}
	if h.collector != nil {
		h.collector.IncTransitions()
	}
	response.JSON(w, http.StatusNoContent, nil)
}

func (h *CollaboratorHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	entries, err := h.collaborators.History(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, entries)
}

func (h *CollaboratorHandler) ListDeclined(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.collaborators.ListDeclinedProfiles(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, profiles)
}

func (h *CollaboratorHandler) ListTerminated(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.collaborators.ListTerminatedProfiles(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, profiles)
}
