package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
	"github.com/FedassaMeg/haven-sub012/pkg/platform/sentinel"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

var codeStatuses = map[dErrors.Code]int{
	dErrors.CodeInvalidInput:       http.StatusBadRequest,
	dErrors.CodeValidation:         http.StatusBadRequest,
	dErrors.CodeUnauthorized:       http.StatusForbidden,
	dErrors.CodePolicyViolation:    http.StatusForbidden,
	dErrors.CodeNotFound:           http.StatusNotFound,
	dErrors.CodeInvariantViolation: http.StatusConflict,
	dErrors.CodeIntegrity:          http.StatusConflict,
}

// writeError translates domain errors into the JSON error envelope. The
// envelope carries the code and, for authorization denials, the rejection
// reason; internal details never leave the process.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := string(dErrors.CodeInternal)
	message := "internal error"

	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		if s, ok := codeStatuses[de.Code]; ok {
			status = s
		}
		code = string(de.Code)
		message = de.Message
	case errors.Is(err, sentinel.ErrNotFound):
		status = http.StatusNotFound
		code = string(dErrors.CodeNotFound)
		message = "not found"
	}

	body := map[string]string{"error": code, "message": message}
	if reason := dErrors.ReasonOf(err); reason != "" {
		body["reason"] = reason
	}
	writeJSON(w, status, body)
}
