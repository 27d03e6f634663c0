package http

import (
	"encoding/json"
	"net/http"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/logger"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps an error tag to an HTTP status.
func statusFor(code string) int {
	switch code {
	case domain.CodeUnsupportedFileType:
		return http.StatusUnsupportedMediaType
	case domain.CodeNoExtractableText, domain.CodeExtractionFailed:
		return http.StatusUnprocessableEntity
	case domain.CodeInvalidChunkParameters, domain.CodeInvalidInput:
		return http.StatusBadRequest
	case domain.CodeEmbeddingService:
		return http.StatusBadGateway
	case domain.CodeTimeout:
		return http.StatusGatewayTimeout
	case domain.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error":{"code","message"}}. Internal error
// details are logged, not returned.
func writeError(w http.ResponseWriter, err error) {
	code := domain.ErrorCode(err)
	status := statusFor(code)

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Warn("request failed: %v", err)
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encoding response: %v", err)
	}
}
