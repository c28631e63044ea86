// internal/workers/application/reserve-submission/models.go
package reservesubmission

import "application-intake/internal/models"

type Input struct {
	UserID string          `json:"userId"`
	Kind   models.FormKind `json:"formKind"`
}

type Output struct {
	Reserved bool `json:"reserved"`
}
