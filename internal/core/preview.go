package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/schedulizer/internal/logging"
	"github.com/JonMunkholm/schedulizer/internal/schedule"
)

// PreviewResult describes what an import would do without applying it.
// The embedded counts are those of the state the import would produce.
type PreviewResult struct {
	ImportResult

	// Parsed is the schedule read from a spreadsheet, before merging.
	Parsed *schedule.Schedule `json:"parsed,omitempty"`

	// ParsedConstraints is the expanded conflict map read from a json file.
	ParsedConstraints Constraints `json:"parsedConstraints,omitempty"`
}

// Preview runs the decode and parse steps of Import against req and reports
// the outcome. The service state, the store, the metrics and the history are
// left untouched, and no import slot is taken.
func (s *Service) Preview(ctx context.Context, req ImportRequest) (PreviewResult, error) {
	start := time.Now()
	result := ImportResult{
		FileName:   req.FileName,
		Additive:   req.Additive,
		ImportedBy: ImporterFromContext(ctx),
		StartedAt:  start,
	}

	ft, err := s.validate(req)
	if err != nil {
		return PreviewResult{ImportResult: result}, err
	}
	result.Type = ft

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	logger := logging.WithFields(ctx,
		"file", req.FileName,
		"type", ft,
		"additive", req.Additive,
		"preview", true,
	)

	action, err := s.prepare(ctx, req, &result, logger)
	if err != nil {
		logger.Debug("preview failed", "error", err)
		return PreviewResult{ImportResult: result}, err
	}

	// Reduce never modifies its input, so the live state is safe to use here.
	fillCounts(&result, schedule.Reduce(s.State(), action))
	result.Duration = time.Since(start)

	out := PreviewResult{ImportResult: result}
	switch act := action.(type) {
	case schedule.ImportSchedule:
		out.Parsed = &act.Schedule
	case schedule.SetConstraints:
		out.ParsedConstraints = act.Constraints
	}
	return out, nil
}
