package http

import (
	"bytes"
	"net/http"

	"spendwise/internal/analytics"
	"spendwise/internal/cache"
	"spendwise/internal/log"
	"spendwise/internal/report"
)

const dashboardView = "dashboard"

// handleStats serves the derived statistics. A cached dashboard is reused only
// while the stored expense list still has the version it was built from.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID := sessionFrom(r.Context()).UserID
	key := cache.Key(userID, dashboardView)

	expenses, version, err := s.deps.Expenses.Snapshot(r.Context(), userID)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	if s.deps.Stats != nil {
		if d, ok := s.deps.Stats.Get(key); ok && d.Version == version {
			NewResponse().Header("X-Cache", "HIT").JSON(d).Write(w)
			return
		}
	}

	stats := analytics.ComputeStats(expenses)
	d := cache.Dashboard{
		Stats:      stats,
		Monthly:    analytics.MonthlyBuckets(expenses),
		Weekly:     analytics.WeeklyBuckets(expenses),
		Categories: analytics.CategoryBreakdown(stats),
		Version:    version,
	}
	if s.deps.Stats != nil {
		s.deps.Stats.Set(key, d)
	}
	NewResponse().Header("X-Cache", "MISS").JSON(d).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month, err := ParseMonthParam(q, s.now())
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	params := report.Params{Month: month, Year: ParseYearParam(q, s.now())}

	expenses, err := s.deps.Expenses.List(r.Context(), sessionFrom(r.Context()).UserID)
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	table, filename, err := report.Build(report.Kind(r.PathValue("type")), expenses, params)
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}

	var buf bytes.Buffer
	if err := table.WriteCSV(&buf); err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	NewResponse().CSV(filename, buf.Bytes()).Write(w)
}
