package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"hrpipeline/internal/common"
)

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return common.NewError(common.CodeValidation, "invalid request body", err)
	}
	return nil
}

func errUnauthorized() error {
	return common.NewError(common.CodeUnauthorized, "not authenticated", nil)
}

// idFromPath extracts the path segment at the given index (zero-based, empty
// segments dropped) and parses it as a UUID.
func idFromPath(r *http.Request, index int) (common.UUID, error) {
	segments := strings.FieldsFunc(r.URL.Path, func(c rune) bool { return c == '/' })
	if index >= len(segments) {
		return "", common.NewError(common.CodeValidation, "missing id in path", nil)
	}
	id, err := common.ParseUUID(segments[index])
	if err != nil {
		return "", common.NewError(common.CodeValidation, "invalid id in path", err)
	}
	return id, nil
}
