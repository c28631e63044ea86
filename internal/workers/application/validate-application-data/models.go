// internal/workers/application/validate-application-data/models.go
package validateapplicationdata

import "application-intake/internal/models"

type Input struct {
	Kind    models.FormKind   `json:"kind"`
	Answers map[string]string `json:"answers"`
}

type Output struct {
	IsValid          bool              `json:"isValid"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
