package handlers

import (
	"net/http"

	"hrpipeline/internal/app"
	"hrpipeline/internal/http/response"
)

type AdmissionHandler struct {
	admission *app.AdmissionService
}

func NewAdmissionHandler(admission *app.AdmissionService) *AdmissionHandler {
	return &AdmissionHandler{admission: admission}
}

func (h *AdmissionHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.admission.ListContracts(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, contracts)
}

type admissionFormRequest struct {
	FullName             string `json:"fullName"`
	ContactNumber        string `json:"contactNumber"`
	AdmissionDate        string `json:"admissionDate"`
	DocumentDeliveryDate string `json:"documentDeliveryDate"`
	VP                   string `json:"vp"`
}

func (h *AdmissionHandler) FillAdmissionForm(w http.ResponseWriter, r *http.Request) {
	contractID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req admissionFormRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	collab, err := h.admission.FillAdmissionForm(r.Context(), contractID, app.AdmissionForm{
		FullName:             req.FullName,
		ContactNumber:        req.ContactNumber,
		AdmissionDate:        req.AdmissionDate,
		DocumentDeliveryDate: req.DocumentDeliveryDate,
		VP:                   req.VP,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, collab)
}
