/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the processing pipeline via a thin REST API. Handlers move uploaded
  workbooks into place, delegate to runner, journal the outcome, and serve
  the artifacts back. No payroll computation happens in this package.

ENDPOINTS:
  Uploads:
    POST /api/uploads/shift-record   Stage the shift-punch export
    POST /api/uploads/tracker        Stage the tracker workbook

  Runs:
    POST /api/runs                   Process the full cycle
    POST /api/runs/off-cycle         Process one employee off cycle
    GET  /api/runs                   Run history, newest first
    GET  /api/runs/{id}              One run with its artifacts
    GET  /api/runs/{id}/artifacts/{index}  Download an artifact

  Tracker:
    POST /api/tracker/refresh        Adopt a run's NEW TRACKER as current

  Names:
    GET  /api/names                  Employees available for off-cycle runs

REQUEST FLOW:
  1. Parse HTTP request
  2. Journal the run as running
  3. Call runner
  4. Journal completion or failure
  5. Serialize response

ERROR HANDLING:
  Pipeline failures come back as JSON carrying the operator message from the
  error taxonomy; statusFor (dto.go) picks the HTTP status. A failed run is
  still journaled, so history shows what went wrong.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - runner: The pipeline these handlers front
*/
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nova-hs/payroll-engine/runner"
	"github.com/nova-hs/payroll-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Journal *sqlite.Journal

	// DataDir holds the staged workbooks and the artifacts/ subdirectory.
	DataDir string

	// runMu serializes processing runs; the journal serializes its own
	// writes, but only one run may read and rewrite the tracker at a time.
	runMu sync.Mutex
}

// NewHandler creates a new handler writing under dataDir.
func NewHandler(journal *sqlite.Journal, dataDir string) *Handler {
	return &Handler{Journal: journal, DataDir: dataDir}
}

func (h *Handler) shiftRecordPath() string { return filepath.Join(h.DataDir, "shift_record.xlsx") }
func (h *Handler) trackerPath() string     { return filepath.Join(h.DataDir, "tracker.xlsx") }
func (h *Handler) artifactsDir() string    { return filepath.Join(h.DataDir, "artifacts") }

// =============================================================================
// UPLOADS
// =============================================================================

// UploadShiftRecord stages the shift-punch export for the next run.
func (h *Handler) UploadShiftRecord(w http.ResponseWriter, r *http.Request) {
	h.saveUpload(w, r, h.shiftRecordPath())
}

// UploadTracker stages the tracker workbook for the next run.
func (h *Handler) UploadTracker(w http.ResponseWriter, r *http.Request) {
	h.saveUpload(w, r, h.trackerPath())
}

func (h *Handler) saveUpload(w http.ResponseWriter, r *http.Request, dest string) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart field \"file\"")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		writeError(w, http.StatusBadRequest, "expected an .xlsx workbook")
		return
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "cannot store upload")
		return
	}
	out, err := os.Create(dest)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cannot store upload")
		return
	}
	defer out.Close()

	size, err := io.Copy(out, file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cannot store upload")
		return
	}
	writeJSON(w, http.StatusOK, UploadDTO{Filename: header.Filename, Size: size})
}

// =============================================================================
// RUNS
// =============================================================================

// ProcessFullCycle runs the full payroll cycle on the staged workbooks.
func (h *Handler) ProcessFullCycle(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, sqlite.KindFullCycle, "")
}

// ProcessOffCycle runs a single-employee off-cycle on the staged workbooks.
func (h *Handler) ProcessOffCycle(w http.ResponseWriter, r *http.Request) {
	var req OffCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "expected body {\"name\": \"First Last\"}")
		return
	}
	h.process(w, r, sqlite.KindOffCycle, strings.TrimSpace(req.Name))
}

func (h *Handler) process(w http.ResponseWriter, r *http.Request, kind, employee string) {
	if !h.stagedInputsExist() {
		writeError(w, http.StatusConflict, "upload a shift record and a tracker first")
		return
	}

	h.runMu.Lock()
	defer h.runMu.Unlock()

	ctx := r.Context()
	id := uuid.NewString()
	if err := h.Journal.Begin(ctx, id, kind, employee); err != nil {
		writeError(w, http.StatusInternalServerError, "cannot journal run")
		return
	}

	outDir := filepath.Join(h.artifactsDir(), id)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "cannot create artifact directory")
		return
	}

	var (
		res *runner.Result
		err error
	)
	if kind == sqlite.KindOffCycle {
		res, err = runner.RunOne(h.shiftRecordPath(), h.trackerPath(), outDir, employee)
	} else {
		res, err = runner.Run(h.shiftRecordPath(), h.trackerPath(), outDir)
	}
	if err != nil {
		h.Journal.Fail(ctx, id, err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	if err := h.Journal.Complete(ctx, id, res.Period, res.Artifacts); err != nil {
		writeError(w, http.StatusInternalServerError, "cannot journal run completion")
		return
	}
	run, err := h.Journal.Get(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cannot read back run")
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(*run))
}

func (h *Handler) stagedInputsExist() bool {
	for _, p := range []string{h.shiftRecordPath(), h.trackerPath()} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// ListRuns returns run history, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Journal.List(r.Context(), 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cannot list runs")
		return
	}
	writeJSON(w, http.StatusOK, toRunDTOs(runs))
}

// GetRun returns one run with its artifacts.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Journal.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cannot read run")
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(*run))
}

// DownloadArtifact serves one artifact of a completed run.
func (h *Handler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	run, err := h.Journal.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cannot read run")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 || index >= len(run.Artifacts) {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}

	path := run.Artifacts[index]
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filepath.Base(path)+"\"")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, path)
}

// =============================================================================
// TRACKER REFRESH
// =============================================================================

// RefreshTracker replaces the staged tracker with the NEW TRACKER artifact of
// a completed full-cycle run, closing the loop for the next cycle.
func (h *Handler) RefreshTracker(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RunID == "" {
		writeError(w, http.StatusBadRequest, "expected body {\"run_id\": \"...\"}")
		return
	}

	run, err := h.Journal.Get(r.Context(), req.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cannot read run")
		return
	}
	if run.Kind != sqlite.KindFullCycle || run.Status != sqlite.StatusCompleted {
		writeError(w, http.StatusConflict, "only a completed full-cycle run has a refreshed tracker")
		return
	}

	var source string
	for _, a := range run.Artifacts {
		if strings.HasPrefix(filepath.Base(a), "NEW TRACKER") {
			source = a
			break
		}
	}
	if source == "" {
		writeError(w, http.StatusNotFound, "run has no refreshed tracker artifact")
		return
	}

	h.runMu.Lock()
	defer h.runMu.Unlock()
	if err := copyFile(source, h.trackerPath()); err != nil {
		writeError(w, http.StatusInternalServerError, "cannot adopt refreshed tracker")
		return
	}
	writeJSON(w, http.StatusOK, UploadDTO{Filename: filepath.Base(source)})
}

// =============================================================================
// NAMES
// =============================================================================

// ListNames returns the employees eligible for an off-cycle run: non-manager
// staff present in the staged shift record.
func (h *Handler) ListNames(w http.ResponseWriter, r *http.Request) {
	if !h.stagedInputsExist() {
		writeError(w, http.StatusConflict, "upload a shift record and a tracker first")
		return
	}
	names, err := runner.Names(h.shiftRecordPath(), h.trackerPath())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, NamesDTO{Names: names})
}

// =============================================================================
// HELPERS
// =============================================================================

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
