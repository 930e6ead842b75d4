package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"storefront/apperrors"
	"storefront/logging"
	"storefront/models"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error   apperrors.Type `json:"error"`
	Message string         `json:"message"`
	Fields  any            `json:"fields,omitempty"`
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Sugar.Errorf("❌ Error encoding response: %v", err)
	}
}

// writeError maps err to its status code and logs it under op
func writeError(w http.ResponseWriter, op string, err error) {
	status := apperrors.StatusCode(err)
	resp := ErrorResponse{Error: apperrors.TypeOf(err), Message: err.Error()}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
		if len(appErr.Fields) > 0 {
			resp.Fields = appErr.Fields
		}
	}
	if status >= http.StatusInternalServerError {
		logging.Sugar.Errorf("❌ %s: %v", op, err)
		resp.Message = "internal server error"
	} else {
		logging.Sugar.Warnf("⚠️  %s: %v", op, err)
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads the request body into dst
func decodeJSON(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return apperrors.Validation(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidField(name, "must be an integer")
	}
	return v, nil
}

// pageRequest reads ?cursor=, ?page= and ?limit=
func pageRequest(r *http.Request) (models.PageRequest, error) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return models.PageRequest{}, err
	}
	page, err := queryInt(r, "page")
	if err != nil {
		return models.PageRequest{}, err
	}
	return models.PageRequest{
		Limit:  limit,
		Page:   page,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
