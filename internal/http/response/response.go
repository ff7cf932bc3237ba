// Package response writes the JSON envelope used by every handler.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"hrpipeline/internal/common"
)

type errorBody struct {
	Error *common.Error `json:"error"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// Error maps an application error code to an HTTP status and writes the
// error envelope. Unknown errors become opaque 500s.
func Error(w http.ResponseWriter, err error) {
	var appErr *common.Error
	if !errors.As(err, &appErr) {
		appErr = common.NewError(common.CodeInternal, "internal error", nil)
	}
	JSON(w, statusFor(appErr.Code), errorBody{Error: appErr})
}

func statusFor(code common.Code) int {
	switch code {
	case common.CodeValidation, common.CodeInvalidTransition:
		return http.StatusUnprocessableEntity
	case common.CodeCapacityExceeded, common.CodeConflict:
		return http.StatusConflict
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	case common.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
