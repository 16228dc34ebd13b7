package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/JonMunkholm/schedulizer/internal/core"
	"github.com/JonMunkholm/schedulizer/internal/facultyload"
	"github.com/JonMunkholm/schedulizer/internal/logging"
	"github.com/JonMunkholm/schedulizer/internal/web/templates"
)

// multipartOverhead is the room left for form fields and boundaries on top
// of the configured file size limit.
const multipartOverhead = 1 << 20

// readUpload reads a multipart upload with a "file" part and an optional
// "additive" flag. On failure the error response has been written.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (core.ImportRequest, bool) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "too large") {
			s.respondError(w, r, fmt.Errorf("file too large: limit is %d bytes", maxSize))
			return core.ImportRequest{}, false
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrNoFile, err))
		return core.ImportRequest{}, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, core.ErrNoFile)
		return core.ImportRequest{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("read upload: %w", err))
		return core.ImportRequest{}, false
	}

	return core.ImportRequest{
		FileName: header.Filename,
		Data:     data,
		Additive: core.ParseBool(r.FormValue("additive")),
	}, true
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	result, err := s.service.Import(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// handlePreview parses an upload the same way handleImport does but leaves
// the current schedule unchanged.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	preview, err := s.service.Preview(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, preview)
}

func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.History())
}

// handleSelectTerm changes the selected term. Accepts {"term": "SP"} or a
// "term" form value.
func (s *Server) handleSelectTerm(w http.ResponseWriter, r *http.Request) {
	raw := r.FormValue("term")
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Term string `json:"term"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&body); err != nil {
			s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidTerm, err))
			return
		}
		raw = body.Term
	}

	term, err := core.ParseTerm(raw)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	st := s.service.SelectTerm(term)
	writeJSON(w, map[string]any{"selectedTerm": st.SelectedTerm})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.State())
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Schedule())
}

func (s *Server) handleConstraints(w http.ResponseWriter, r *http.Request) {
	constraints := s.service.Constraints()
	if constraints == nil {
		constraints = map[string][]string{}
	}
	writeJSON(w, constraints)
}

// handleFindSection resolves ?name=MATH-171-A&term=FA to its section.
func (s *Server) handleFindSection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	term, err := core.ParseTerm(q.Get("term"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	csm, err := s.service.FindSection(q.Get("name"), term)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, csm)
}

// SchemaInfo describes a registered spreadsheet layout.
type SchemaInfo struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Headers []string `json:"headers"`
}

func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	schemas := core.Schemas()
	out := make([]SchemaInfo, 0, len(schemas))
	for _, sc := range schemas {
		headers := sc.Headers()
		sort.Strings(headers)
		out = append(out, SchemaInfo{Name: sc.Name, Label: sc.Label, Headers: headers})
	}
	writeJSON(w, out)
}

func (s *Server) handleFacultyLoads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.FacultyLoads())
}

func (s *Server) handleFacultyLoadsCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="faculty-loads.csv"`)

	if err := facultyload.WriteCSV(w, s.service.FacultyLoads()); err != nil {
		// Headers are already sent; all we can do is log.
		logging.FromContext(r.Context()).Error("faculty load csv export failed", "error", err)
	}
}

func (s *Server) handleFacultyLoadsXLSX(w http.ResponseWriter, r *http.Request) {
	buf, err := facultyload.WriteXLSX(s.service.FacultyLoads())
	if err != nil {
		s.respondError(w, r, fmt.Errorf("export faculty loads: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="faculty-loads.xlsx"`)
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Error("faculty load xlsx export failed", "error", err)
	}
}

// handleLoadCell resolves ?column=...&value=... from the report to a section.
func (s *Server) handleLoadCell(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	match := s.service.LookupLoadCell(facultyload.Column(q.Get("column")), q.Get("value"))
	if match.Sections == nil {
		match.Sections = []string{}
	}
	writeJSON(w, match)
}

func (s *Server) handleFacultyLoadsPage(w http.ResponseWriter, r *http.Request) {
	st := s.service.State()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := templates.FacultyLoads(s.service.FacultyLoads(), st.Schedule.NumDistinctSchedules)
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render faculty loads", "error", err)
	}
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status               string                   `json:"status"`
	Courses              int                      `json:"courses"`
	Sections             int                      `json:"sections"`
	NumDistinctSchedules int                      `json:"numDistinctSchedules"`
	Imports              core.ImportLimiterStatus `json:"imports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sched := s.service.Schedule()
	writeJSON(w, HealthResponse{
		Status:               "ok",
		Courses:              len(sched.Courses),
		Sections:             sched.SectionCount(),
		NumDistinctSchedules: sched.NumDistinctSchedules,
		Imports:              s.service.LimiterStatus(),
	})
}
