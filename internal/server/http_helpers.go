package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"roll-for-your-life/internal/apperr"
	"roll-for-your-life/internal/game"
)

func readJSON(body io.Reader, dest any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

func statusForError(err error) int {
	if errors.Is(err, game.ErrSuperseded) {
		return http.StatusConflict
	}
	switch apperr.CodeOf(err) {
	case apperr.CodeInvalidMove:
		return http.StatusConflict
	case apperr.CodeRejected:
		return http.StatusUnprocessableEntity
	case apperr.CodeTransport, apperr.CodeConfig:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
