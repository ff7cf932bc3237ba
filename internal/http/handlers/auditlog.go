package handlers

import (
	"net/http"

	"hrpipeline/internal/audit"
	"hrpipeline/internal/http/response"
)

type AuditLogHandler struct {
	sink *audit.StoreSink
}

func NewAuditLogHandler(sink *audit.StoreSink) *AuditLogHandler {
	return &AuditLogHandler{sink: sink}
}

func (h *AuditLogHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.sink.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, records)
}
