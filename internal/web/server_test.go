package web

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/schedulizer/internal/config"
	"github.com/JonMunkholm/schedulizer/internal/core"
	_ "github.com/JonMunkholm/schedulizer/internal/core/fields"
	"github.com/JonMunkholm/schedulizer/internal/facultyload"
	"github.com/JonMunkholm/schedulizer/internal/metrics"
	"github.com/JonMunkholm/schedulizer/internal/schedule"
)

const fallCSV = `prefix,number,section,term,name,instructor,facultyHours,days,startTime,duration,location
MATH,171,A,FA,Calculus I,Smith,4,MWF,8:00AM,65,NH 253
MATH,171,B,FA,Calculus I,Jones,4,TTh,1:30PM,95,NH 276
CS,108,A,FA,Intro to Computing,Smith,3,MWF,10:30AM,50,SB 372
`

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Import: config.ImportConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 1,
			MaxWaitTime:   time.Second,
			Timeout:       time.Minute,
		},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

type testServer struct {
	*Server
	reg *prometheus.Registry
}

func newTestServer(t *testing.T, mutate func(*config.Config)) testServer {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	reg := prometheus.NewRegistry()
	rec, err := metrics.New(reg)
	require.NoError(t, err)

	svc := core.NewService(cfg, core.WithRecorder(rec))
	srv := NewServer(cfg, svc, reg)
	t.Cleanup(func() { _ = srv.Shutdown(t.Context()) })
	return testServer{Server: srv, reg: reg}
}

func (ts testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)
	return rec
}

func importRequest(t *testing.T, fileName, content string, additive bool) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	if additive {
		require.NoError(t, mw.WriteField("additive", "true"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func importFall(t *testing.T, ts testServer) core.ImportResult {
	t.Helper()
	rec := ts.do(importRequest(t, "fall.csv", fallCSV, false))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res core.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestImport(t *testing.T) {
	ts := newTestServer(t, nil)

	res := importFall(t, ts)
	assert.Equal(t, core.FileCSV, res.Type)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.Courses)
	assert.Equal(t, 1, res.NumDistinctSchedules)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/schedule", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var sched schedule.Schedule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sched))
	assert.Equal(t, 3, sched.SectionCount())
}

func TestImport_Additive(t *testing.T) {
	ts := newTestServer(t, nil)
	importFall(t, ts)

	spring := "prefix,number,section,term,instructor,facultyHours,days,duration\nMATH,172,A,SP,Jones,4,MWF,65\n"
	rec := ts.do(importRequest(t, "spring.csv", spring, true))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res core.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Additive)
	assert.Equal(t, 3, res.Courses)
	assert.Equal(t, 2, res.NumDistinctSchedules)
}

func TestImport_Errors(t *testing.T) {
	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		status   int
		wantCode string
	}{
		{
			name:     "missing file part",
			req:      func(t *testing.T) *http.Request { return importRequest(t, "", "", false) },
			status:   http.StatusBadRequest,
			wantCode: "FILE004",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader("x"))
			},
			status:   http.StatusBadRequest,
			wantCode: "FILE004",
		},
		{
			name:     "unsupported extension",
			req:      func(t *testing.T) *http.Request { return importRequest(t, "schedule.pdf", "x", false) },
			status:   http.StatusUnsupportedMediaType,
			wantCode: "FILE006",
		},
		{
			name:     "empty file",
			req:      func(t *testing.T) *http.Request { return importRequest(t, "fall.csv", "", false) },
			status:   http.StatusBadRequest,
			wantCode: "FILE005",
		},
		{
			name:     "bad constraints",
			req:      func(t *testing.T) *http.Request { return importRequest(t, "c.json", "{", false) },
			status:   http.StatusBadRequest,
			wantCode: "FILE008",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			rec := ts.do(tt.req(t))
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestImport_TooLarge(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) { cfg.Import.MaxFileSize = 64 })

	rec := ts.do(importRequest(t, "fall.csv", fallCSV, false))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "FILE001")
}

func TestImport_ConstraintsThenGet(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(importRequest(t, "constraints.json", `[["MATH-171","CS-108"]]`, false))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/constraints", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var constraints map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &constraints))
	assert.Equal(t, []string{"CS-108"}, constraints["MATH-171"])
}

func TestConstraints_EmptyIsObject(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/constraints", nil))
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestFindSection(t *testing.T) {
	ts := newTestServer(t, nil)
	importFall(t, ts)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/section?name=MATH-171-B&term=FA", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var csm schedule.CourseSectionMeeting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &csm))
	assert.Equal(t, "B", csm.Section.Letter)
	assert.Equal(t, "1:30 PM", csm.Meeting.StartTime)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/section?name=MATH-171-B&term=SP", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "LKP001")

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/section?name=MATH-171-B&term=XX", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "LKP002")
}

func TestSelectTerm(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/term", strings.NewReader(`{"term":"Spring"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"selectedTerm":"SP"}`, rec.Body.String())

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/state", nil))
	var st schedule.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, schedule.TermSpring, st.SelectedTerm)
}

func TestFacultyLoads(t *testing.T) {
	ts := newTestServer(t, nil)
	importFall(t, ts)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/faculty-loads", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []facultyload.Row
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Smith", rows[0].Faculty)
	assert.Equal(t, 7.0, rows[0].TotalHours)
	assert.Equal(t, "MATH-171-A, CS-108-A", rows[0].FallCourseSections)
}

func TestFacultyLoadsCSV(t *testing.T) {
	ts := newTestServer(t, nil)
	importFall(t, ts)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/faculty-loads.csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "faculty-loads.csv")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Faculty", records[0][0])
	assert.Equal(t, "Smith", records[1][0])
}

func TestFacultyLoadsXLSX(t *testing.T) {
	ts := newTestServer(t, nil)
	importFall(t, ts)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/faculty-loads.xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Jones", rows[2][0])
}

func TestLoadCell(t *testing.T) {
	ts := newTestServer(t, nil)
	importFall(t, ts)

	rec := ts.do(httptest.NewRequest(http.MethodGet,
		"/api/faculty-loads/cell?column=Fall+Course+Sections&value=MATH-171-A%2C+CS-108-A", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var match facultyload.CellMatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &match))
	require.NotNil(t, match.Match)
	assert.Equal(t, []string{"MATH-171-A", "CS-108-A"}, match.Sections)
	assert.Equal(t, "Calculus I", match.Match.Course.Name)
}

func TestFacultyLoadsPage(t *testing.T) {
	ts := newTestServer(t, nil)
	importFall(t, ts)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/faculty-loads", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "<td>Smith</td>")
	assert.Contains(t, body, "column=Fall+Course+Sections&amp;value=CS-108-A")
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestFacultyLoadsPage_EscapesNames(t *testing.T) {
	ts := newTestServer(t, nil)
	csvText := "prefix,number,section,instructor,facultyHours\nMATH,171,A,<script>x</script>,4\n"
	require.Equal(t, http.StatusOK, ts.do(importRequest(t, "x.csv", csvText, false)).Code)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/faculty-loads", nil))
	assert.NotContains(t, rec.Body.String(), "<script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}

func TestListSchemas(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/schemas", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var schemas []SchemaInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schemas))
	require.Len(t, schemas, 2)
	assert.Equal(t, "pruim", schemas[0].Name)
	assert.Contains(t, schemas[1].Headers, "SubjectCode")
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, nil)
	importFall(t, ts)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 3, health.Sections)
	assert.Equal(t, 1, health.Imports.MaxConcurrent)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `schedule_imports_total{additive="false",code="OK",type="csv"} 1`)
	assert.Contains(t, rec.Body.String(), "schedule_sections 3")
}

func TestImportKeyRequiredForMutations(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.ImportKeys = map[string]string{"registrar": "secret", "dean": "other"}
		cfg.Import.HistorySize = 5
	})

	rec := ts.do(importRequest(t, "fall.csv", fallCSV, false))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "AUTH001", errResp.Code)

	req := importRequest(t, "fall.csv", fallCSV, false)
	req.Header.Set("X-API-Key", "wrong")
	rec = ts.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH002")

	term := httptest.NewRequest(http.MethodPost, "/api/term?term=SP", nil)
	assert.Equal(t, http.StatusUnauthorized, ts.do(term).Code)

	req = importRequest(t, "fall.csv", fallCSV, false)
	req.Header.Set("X-API-Key", "secret")
	rec = ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	var result core.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "registrar", result.ImportedBy)

	// Reads stay open, and history names the importer.
	assert.Equal(t, http.StatusOK, ts.do(httptest.NewRequest(http.MethodGet, "/api/schedule", nil)).Code)
	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/imports", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var history []core.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.NotEmpty(t, history)
	assert.Equal(t, "registrar", history[0].ImportedBy)
}

func TestImportWithoutKeysHasNoImporter(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(importRequest(t, "fall.csv", fallCSV, false))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "importedBy")
}

func TestImportRateLimit(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 100, ImportLimit: 1}
	})

	assert.Equal(t, http.StatusOK, ts.do(importRequest(t, "fall.csv", fallCSV, false)).Code)

	rec := ts.do(importRequest(t, "fall.csv", fallCSV, false))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE001")

	// Other routes use the general limit.
	assert.Equal(t, http.StatusOK, ts.do(httptest.NewRequest(http.MethodGet, "/api/state", nil)).Code)
}

func TestRootRedirects(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/faculty-loads", rec.Header().Get("Location"))
}

func TestRateLimiterAllow(t *testing.T) {
	s := &Server{}
	rl := s.newRateLimiter(2, time.Minute)
	defer rl.stop()

	assert.True(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"))
}

func TestPreview(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.Import.HistorySize = 10 })

	req := importRequest(t, "fall.csv", fallCSV, false)
	req.URL.Path = "/api/import/preview"
	rec := ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preview core.PreviewResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Equal(t, 3, preview.Rows)
	assert.Equal(t, 2, preview.Courses)
	require.NotNil(t, preview.Parsed)
	assert.Len(t, preview.Parsed.Courses, 2)

	// Nothing was applied or recorded.
	assert.Empty(t, ts.service.Schedule().Courses)
	assert.Empty(t, ts.service.History())
}

func TestPreview_Error(t *testing.T) {
	ts := newTestServer(t, nil)

	req := importRequest(t, "notes.txt", "x", false)
	req.URL.Path = "/api/import/preview"
	rec := ts.do(req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "FILE006", body.Code)
}

func TestImportHistory(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.Import.HistorySize = 10 })

	importFall(t, ts)
	ts.do(importRequest(t, "notes.txt", "x", false))

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/imports", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var history []core.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 2)
	assert.Equal(t, "notes.txt", history[0].FileName)
	assert.Equal(t, "FILE006", history[0].ErrorCode)
	assert.Equal(t, "fall.csv", history[1].FileName)
	assert.Empty(t, history[1].ErrorCode)
}
