/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

ERROR MAPPING:
  The pipeline's error taxonomy maps onto HTTP status codes here:
    validation / parse / data-integrity / configuration -> 422
    unreadable input file                               -> 400
    anything else                                       -> 500
  The error text is the operator message; it names the column, employee, or
  shift to fix in the source workbook.

SEE ALSO:
  - handlers.go: Uses these types
  - pay/errors.go: The taxonomy mapped here
*/
package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/nova-hs/payroll-engine/pay"
	"github.com/nova-hs/payroll-engine/store/sqlite"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// RunDTO represents a journaled processing run.
type RunDTO struct {
	ID          string        `json:"id"`
	Kind        string        `json:"kind"`
	Employee    string        `json:"employee,omitempty"`
	PayPeriod   string        `json:"pay_period,omitempty"`
	Status      string        `json:"status"`
	Error       string        `json:"error,omitempty"`
	Artifacts   []ArtifactDTO `json:"artifacts"`
	CreatedAt   string        `json:"created_at"`
	CompletedAt string        `json:"completed_at,omitempty"`
}

// ArtifactDTO is one downloadable output file of a completed run.
type ArtifactDTO struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
}

// OffCycleRequest is the request to process a single employee off cycle.
type OffCycleRequest struct {
	Name string `json:"name"`
}

// RefreshRequest is the request to adopt a run's refreshed tracker.
type RefreshRequest struct {
	RunID string `json:"run_id"`
}

// UploadDTO acknowledges a staged workbook.
type UploadDTO struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// NamesDTO lists the employees available for an off-cycle run.
type NamesDTO struct {
	Names []string `json:"names"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toRunDTO(r sqlite.Run) RunDTO {
	dto := RunDTO{
		ID:        r.ID,
		Kind:      r.Kind,
		Employee:  r.Employee,
		Status:    r.Status,
		Error:     r.Error,
		Artifacts: []ArtifactDTO{},
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	if !r.Period.Start.IsZero() {
		dto.PayPeriod = r.Period.Label()
	}
	if r.CompletedAt != nil {
		dto.CompletedAt = r.CompletedAt.Format(time.RFC3339)
	}
	for i, path := range r.Artifacts {
		dto.Artifacts = append(dto.Artifacts, ArtifactDTO{Index: i, Filename: filepath.Base(path)})
	}
	return dto
}

func toRunDTOs(runs []sqlite.Run) []RunDTO {
	dtos := make([]RunDTO, len(runs))
	for i, r := range runs {
		dtos[i] = toRunDTO(r)
	}
	return dtos
}

// statusFor maps a pipeline error to the HTTP status of the failure response.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pay.ErrValidation),
		errors.Is(err, pay.ErrParse),
		errors.Is(err, pay.ErrDataIntegrity),
		errors.Is(err, pay.ErrConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pay.ErrFileFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
