package handlers

import (
	"net/http"

	"hrpipeline/internal/app"
	"hrpipeline/internal/common"
	"hrpipeline/internal/http/metrics"
	"hrpipeline/internal/http/middleware"
	"hrpipeline/internal/http/response"
)

type RecruitmentHandler struct {
	recruitment *app.RecruitmentService
	collector   *metrics.Collector
}

func NewRecruitmentHandler(recruitment *app.RecruitmentService, collector *metrics.Collector) *RecruitmentHandler {
	return &RecruitmentHandler{recruitment: recruitment, collector: collector}
}

type jobOpeningRequest struct {
	JobTitle            string  `json:"jobTitle"`
	Team                string  `json:"team"`
	JobDescription      string  `json:"jobDescription"`
	GenerateDescription bool    `json:"generateDescription"`
	HiringManager       string  `json:"hiringManager"`
	HiringManagerID     string  `json:"hiringManagerId"`
	Positions           int     `json:"positions"`
	JobValue            float64 `json:"jobValue"`
	CostCenter          string  `json:"costCenter"`
	HiringCompany       string  `json:"hiringCompany"`
}

func (h *RecruitmentHandler) CreateJobOpening(w http.ResponseWriter, r *http.Request) {
	var req jobOpeningRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	var managerID common.UUID
	if req.HiringManagerID != "" {
		parsed, err := common.ParseUUID(req.HiringManagerID)
		if err != nil {
			response.Error(w, err)
			return
		}
		managerID = parsed
	}
	created, err := h.recruitment.CreateJobOpening(r.Context(), app.CreateJobOpeningInput{
		JobTitle:            req.JobTitle,
		Team:                req.Team,
		JobDescription:      req.JobDescription,
		GenerateDescription: req.GenerateDescription,
		HiringManager:       req.HiringManager,
		HiringManagerID:     managerID,
		Positions:           req.Positions,
		JobValue:            req.JobValue,
		CostCenter:          req.CostCenter,
		HiringCompany:       req.HiringCompany,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *RecruitmentHandler) ListJobOpenings(w http.ResponseWriter, r *http.Request) {
	openings, err := h.recruitment.ListJobOpenings(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, openings)
}

func (h *RecruitmentHandler) GetJobOpening(w http.ResponseWriter, r *http.Request) {
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	opening, err := h.recruitment.GetJobOpening(r.Context(), jobID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, opening)
}

type assignRecruiterRequest struct {
	RecruiterID     string `json:"recruiterId"`
	Recruiter       string `json:"recruiter"`
	WorkedPositions int    `json:"workedPositions"`
}

func (h *RecruitmentHandler) AssignRecruiter(w http.ResponseWriter, r *http.Request) {
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req assignRecruiterRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	recruiterID, err := common.ParseUUID(req.RecruiterID)
	if err != nil {
		response.Error(w, common.NewError(common.CodeValidation, "invalid recruiter id", err))
		return
	}
	updated, err := h.recruitment.AssignRecruiter(r.Context(), jobID, app.AssignRecruiterInput{
		RecruiterID:     recruiterID,
		Recruiter:       req.Recruiter,
		WorkedPositions: req.WorkedPositions,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

type candidateRequest struct {
	Name          string `json:"name"`
	Source        string `json:"source"`
	Notes         string `json:"notes"`
	ContactNumber string `json:"contactNumber"`
}

func (h *RecruitmentHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req candidateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.recruitment.AddCandidate(r.Context(), jobID, app.AddCandidateInput{
		Name:          req.Name,
		Source:        req.Source,
		Notes:         req.Notes,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *RecruitmentHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	candidates, err := h.recruitment.ListCandidates(r.Context(), jobID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, candidates)
}

type candidateStatusRequest struct {
	Status          string `json:"status"`
	InterviewDate   string `json:"interviewDate"`
	RejectionReason string `json:"rejectionReason"`
}

func (h *RecruitmentHandler) SetCandidateStatus(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	candidateID, err := idFromPath(r, 3)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req candidateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	err = h.recruitment.SetCandidateStatus(r.Context(), actorID, jobID, candidateID, app.CandidateStatusInput{
		Status:          req.Status,
		InterviewDate:   req.InterviewDate,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	if h.collector != nil {
		h.collector.IncTransitions()
	}
	response.JSON(w, http.StatusNoContent, nil)
}

func (h *RecruitmentHandler) ListTalentPool(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.recruitment.ListDisapprovedProfiles(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, profiles)
}

type descriptionSuggestionRequest struct {
	JobTitle string `json:"jobTitle"`
	Team     string `json:"team"`
}

func (h *RecruitmentHandler) SuggestDescription(w http.ResponseWriter, r *http.Request) {
	var req descriptionSuggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	description, err := h.recruitment.SuggestJobDescription(r.Context(), req.JobTitle, req.Team)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"jobDescription": description})
}

func (h *RecruitmentHandler) SuggestInterviewQuestions(w http.ResponseWriter, r *http.Request) {
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	questions, err := h.recruitment.SuggestInterviewQuestions(r.Context(), jobID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, questions)
}
