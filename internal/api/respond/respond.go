// Package respond centralizes the JSON envelope used by every handler:
// {"error": msg} with a conventional status code on failure,
// {"success": true, ...} on success. User-facing messages are French;
// internals only ever reach the server log.
package respond

import (
	"encoding/json"
	"net/http"
)

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the failure envelope.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// ErrorCode writes the failure envelope with a machine-readable code,
// used to distinguish upstream timeouts from generic failures.
func ErrorCode(w http.ResponseWriter, status int, msg, code string) {
	JSON(w, status, map[string]string{"error": msg, "code": code})
}

// Success writes the success envelope, merging payload on top of
// {"success": true}.
func Success(w http.ResponseWriter, status int, payload map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	JSON(w, status, body)
}

// Common user-facing messages.
const (
	MsgUnauthenticated = "Authentification requise"
	MsgForbidden       = "Accès non autorisé"
	MsgNotFound        = "Ressource introuvable"
	MsgInvalidBody     = "Requête invalide"
	MsgInternal        = "Une erreur est survenue"
)
