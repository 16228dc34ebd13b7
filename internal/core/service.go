package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/schedulizer/internal/config"
	"github.com/JonMunkholm/schedulizer/internal/facultyload"
	"github.com/JonMunkholm/schedulizer/internal/logging"
	"github.com/JonMunkholm/schedulizer/internal/schedule"
)

var (
	// ErrNoFile is returned when an import names no file.
	ErrNoFile = errors.New("no file provided")

	// ErrEmptyFile is returned for a zero-length upload.
	ErrEmptyFile = errors.New("empty file")

	// ErrSectionNotFound is returned by FindSection when nothing matches.
	ErrSectionNotFound = errors.New("section not found")

	// ErrInvalidTerm is returned for term text ParseTerm does not recognize.
	ErrInvalidTerm = errors.New("invalid term")
)

// ParseTerm resolves user-supplied term text. An empty string selects Fall.
func ParseTerm(s string) (schedule.Term, error) {
	if strings.TrimSpace(s) == "" {
		return schedule.TermFall, nil
	}
	t, ok := schedule.ParseTerm(s)
	if !ok {
		return "", fmt.Errorf("%w %q", ErrInvalidTerm, s)
	}
	return t, nil
}

// StateStore persists application state between restarts.
type StateStore interface {
	SaveState(ctx context.Context, importID uuid.UUID, fileName string, st schedule.State) error
	LatestState(ctx context.Context) (schedule.State, bool, error)
}

// Recorder receives import outcomes for monitoring.
type Recorder interface {
	ImportSucceeded(fileType string, additive bool, rows, skipped, emptyMeetings int, d time.Duration)
	ImportFailed(fileType string, additive bool, code string)
	ScheduleSize(courses, sections int)
}

type nopRecorder struct{}

func (nopRecorder) ImportSucceeded(string, bool, int, int, int, time.Duration) {}
func (nopRecorder) ImportFailed(string, bool, string)                         {}
func (nopRecorder) ScheduleSize(int, int)                                     {}

// Service owns the application state and applies imports to it.
type Service struct {
	cfg     config.ImportConfig
	limiter *ImportLimiter
	store   StateStore
	metrics Recorder
	history *importHistory

	mu    sync.RWMutex
	state schedule.State
}

// Option configures a Service.
type Option func(*Service)

// WithStore persists state after every import. A nil store disables it.
func WithStore(st StateStore) Option {
	return func(s *Service) { s.store = st }
}

// WithRecorder reports import outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// NewService creates a Service with an empty schedule.
func NewService(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg.Import,
		limiter: NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		metrics: nopRecorder{},
		history: newImportHistory(cfg.Import.HistorySize),
		state:   schedule.NewState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Import decodes, parses and applies one file. Spreadsheets replace the
// schedule, or merge into it when req.Additive is set; a json file replaces
// the conflict constraints. Nothing is applied unless every step before the
// state transition succeeds.
//
// A failure to persist the new state does not fail the import; it is
// reported in ImportResult.Warning instead.
func (s *Service) Import(ctx context.Context, req ImportRequest) (ImportResult, error) {
	start := time.Now()
	result := ImportResult{
		FileName:   req.FileName,
		Additive:   req.Additive,
		ImportedBy: ImporterFromContext(ctx),
		StartedAt:  start,
	}

	ft, err := s.validate(req)
	if err != nil {
		return s.rejected(result, ft, err)
	}
	result.Type = ft

	if err := s.limiter.Acquire(ctx); err != nil {
		return s.rejected(result, ft, err)
	}
	defer s.limiter.Release()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	importID := uuid.New()
	result.ImportID = importID.String()

	logger := logging.WithFields(ctx,
		"import_id", result.ImportID,
		"file", req.FileName,
		"type", ft,
		"additive", req.Additive,
	)
	logger.Info("import started", "bytes", len(req.Data))

	fail := func(err error) (ImportResult, error) {
		logger.Warn("import failed", "error", err, "code", MapError(err).Code)
		return s.rejected(result, ft, err)
	}

	action, err := s.prepare(ctx, req, &result, logger)
	if err != nil {
		return fail(err)
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	s.mu.Lock()
	next := schedule.Reduce(s.state, action)
	s.state = next
	s.mu.Unlock()

	fillCounts(&result, next)

	if s.store != nil {
		if err := s.store.SaveState(ctx, importID, req.FileName, next); err != nil {
			err = fmt.Errorf("save snapshot: %w", err)
			logger.Warn("state not persisted", "error", err)
			result.Warning = FormatUserError(err)
		}
	}

	result.Duration = time.Since(start)
	s.metrics.ImportSucceeded(string(ft), req.Additive, result.Rows, result.SkippedRows, result.EmptyMeetings, result.Duration)
	s.metrics.ScheduleSize(result.Courses, result.Sections)
	s.history.record(result)

	logger.Info("import completed",
		"rows", result.Rows,
		"skipped_rows", result.SkippedRows,
		"empty_meetings", result.EmptyMeetings,
		"courses", result.Courses,
		"sections", result.Sections,
		"num_distinct_schedules", result.NumDistinctSchedules,
		"duration", result.Duration,
	)
	return result, nil
}

// prepare decodes and parses req into the action that applies it, filling
// in the parse statistics of result.
func (s *Service) prepare(ctx context.Context, req ImportRequest, result *ImportResult, logger *slog.Logger) (schedule.Action, error) {
	payload, err := Decode(req.FileName, req.Data)
	if err != nil {
		return nil, err
	}

	if payload.Type == FileJSON {
		result.Constraints = len(payload.Constraints)
		return schedule.SetConstraints{Constraints: payload.Constraints}, nil
	}

	parsed, stats, err := ParseCSVContext(ctx, strings.NewReader(payload.Text))
	if err != nil {
		return nil, err
	}
	result.Rows = stats.Rows
	result.SkippedRows = stats.SkippedRows
	result.EmptyMeetings = stats.EmptyMeetings
	result.UnknownHeaders = stats.UnknownHeaders
	if len(stats.UnknownHeaders) > 0 {
		logger.Debug("unrecognized columns ignored", "headers", stats.UnknownHeaders)
	}
	return schedule.ImportSchedule{Schedule: parsed, Additive: req.Additive}, nil
}

// rejected reports a failed import and returns err unchanged.
func (s *Service) rejected(result ImportResult, ft FileType, err error) (ImportResult, error) {
	code := MapError(err).Code
	s.metrics.ImportFailed(string(ft), result.Additive, code)

	entry := result
	entry.ErrorCode = code
	entry.Duration = time.Since(result.StartedAt)
	s.history.record(entry)
	return result, err
}

func fillCounts(result *ImportResult, next schedule.State) {
	result.Courses = len(next.Schedule.Courses)
	result.Sections = next.Schedule.SectionCount()
	result.NumDistinctSchedules = next.Schedule.NumDistinctSchedules
	if result.Constraints == 0 {
		result.Constraints = len(next.Constraints)
	}
}

// validate rejects requests that can never succeed, before any slot is taken.
func (s *Service) validate(req ImportRequest) (FileType, error) {
	if strings.TrimSpace(req.FileName) == "" {
		return "", ErrNoFile
	}
	ft, err := DetectFileType(req.FileName)
	if err != nil {
		return "unknown", err
	}
	if len(req.Data) == 0 {
		return ft, fmt.Errorf("%w: %s", ErrEmptyFile, req.FileName)
	}
	if limit := s.cfg.MaxFileSize; limit > 0 && int64(len(req.Data)) > limit {
		return ft, fmt.Errorf("file too large: %d bytes exceeds %d", len(req.Data), limit)
	}
	return ft, nil
}

// Restore loads the most recent persisted state, if any. It reports whether
// a snapshot was applied.
func (s *Service) Restore(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}

	st, ok, err := s.store.LatestState(ctx)
	if err != nil {
		return false, fmt.Errorf("restore snapshot: %w", err)
	}
	if !ok {
		return false, nil
	}

	// Derived fields are recomputed rather than trusted from storage.
	next := schedule.Reduce(st, schedule.SetSchedule{Schedule: st.Schedule})
	next = schedule.Reduce(next, schedule.SetSelectedTerm{Term: st.SelectedTerm})

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	s.metrics.ScheduleSize(len(next.Schedule.Courses), next.Schedule.SectionCount())
	logging.FromContext(ctx).Info("state restored",
		"courses", len(next.Schedule.Courses),
		"num_distinct_schedules", next.Schedule.NumDistinctSchedules,
	)
	return true, nil
}

// State returns the current state. The returned value shares memory with
// the service and must be treated as read-only.
func (s *Service) State() schedule.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Schedule returns the current schedule (read-only, see State).
func (s *Service) Schedule() schedule.Schedule {
	return s.State().Schedule
}

// Constraints returns the current conflict constraints (read-only).
func (s *Service) Constraints() map[string][]string {
	return s.State().Constraints
}

// SelectTerm changes the term being viewed.
func (s *Service) SelectTerm(term schedule.Term) schedule.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = schedule.Reduce(s.state, schedule.SetSelectedTerm{Term: term})
	return s.state
}

// FacultyLoads aggregates the current schedule into the faculty load report.
func (s *Service) FacultyLoads() []facultyload.Row {
	return facultyload.Aggregate(s.Schedule())
}

// LookupLoadCell resolves a faculty load report cell to its section.
func (s *Service) LookupLoadCell(column facultyload.Column, value string) facultyload.CellMatch {
	return facultyload.LookupCell(s.Schedule(), column, value)
}

// FindSection resolves a "PREFIX-NUMBER-LETTER" label in the given term.
func (s *Service) FindSection(name string, term schedule.Term) (schedule.CourseSectionMeeting, error) {
	csm, ok := schedule.FindSection(s.Schedule(), name, term)
	if !ok {
		return schedule.CourseSectionMeeting{}, fmt.Errorf("%w: %s (%s)", ErrSectionNotFound, name, term)
	}
	return csm, nil
}

// History returns the most recent imports, newest first, including failed ones.
func (s *Service) History() []ImportResult {
	return s.history.list()
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until in-flight imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
