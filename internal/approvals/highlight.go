package approvals

import (
	"bytes"
	"encoding/json"
	"fmt"

	"procurement/pkg/metadata"
	"procurement/pkg/models"
)

// Flatten decodes an approvals list that may arrive either flat or nested one
// level deep ([[...], [...]]).
func Flatten(raw json.RawMessage) ([]models.Aprobacion, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, fmt.Errorf("approvals list is not an array: %w", err)
	}

	approvals := make([]models.Aprobacion, 0, len(elements))
	for i, element := range elements {
		element = bytes.TrimSpace(element)
		if len(element) > 0 && element[0] == '[' {
			var nested []models.Aprobacion
			if err := json.Unmarshal(element, &nested); err != nil {
				return nil, fmt.Errorf("approvals[%d]: %w", i, err)
			}
			approvals = append(approvals, nested...)
			continue
		}

		var a models.Aprobacion
		if err := json.Unmarshal(element, &a); err != nil {
			return nil, fmt.Errorf("approvals[%d]: %w", i, err)
		}
		approvals = append(approvals, a)
	}

	return approvals, nil
}

// IsAssignedApprover reports whether userID has any approval record on the
// request, whatever its state.
func IsAssignedApprover(approvals []models.Aprobacion, userID string) bool {
	for _, a := range approvals {
		if a.UsuarioID == userID {
			return true
		}
	}
	return false
}

// AwaitsDecision reports whether userID still has a pending approval on the
// request. This drives the card highlight, so it clears as soon as the user
// has decided.
func AwaitsDecision(approvals []models.Aprobacion, userID string) bool {
	for _, a := range approvals {
		if a.UsuarioID == userID && a.EstadoAprobacion == string(metadata.ApprovalPending) {
			return true
		}
	}
	return false
}
