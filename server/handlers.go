package server

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/etnz/dividends"
	"github.com/etnz/dividends/agent"
	"github.com/etnz/dividends/renderer"
)

// maxUpload is the largest portfolio file accepted.
const maxUpload = 2 << 20

//go:embed page.html
var pageHTML string

var page = template.Must(template.New("page").Parse(pageHTML))

type pageData struct {
	Report     template.HTML
	Narrative  template.HTML
	Filename   string
	Rejected   []dividends.RowError
	Error      string
	Custom     bool
	Default    string
	CanNarrate bool
}

// handleHealth returns the server status
// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.len()})
}

// handleIndex shows the report of the session's portfolio. It is computed
// again after an upload, or with ?refresh.
// GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.get(w, r)
	var report *dividends.Report
	var err error
	if r.URL.Query().Has("refresh") {
		report, err = s.analyze(r, id)
	} else {
		report, err = s.lastReport(r, id)
	}
	if err != nil {
		s.renderPage(w, http.StatusInternalServerError, id, nil, err)
		return
	}
	s.renderPage(w, http.StatusOK, id, report, nil)
}

// handleUpload replaces the session's portfolio by an uploaded file.
// POST /upload
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.get(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, header, err := r.FormFile("portfolio")
	if err != nil {
		s.renderPage(w, http.StatusBadRequest, id, nil, fmt.Errorf("no portfolio file: %w", err))
		return
	}
	defer file.Close()

	up, err := dividends.ParseUpload(file, header.Filename)
	if err != nil {
		var uerr *dividends.UploadError
		if errors.As(err, &uerr) {
			s.sessions.update(id, func(sess *session) { sess.rejected = uerr.Rejected })
		}
		s.log.Warn().Err(err).Str("file", header.Filename).Msg("upload rejected")
		s.renderPage(w, http.StatusBadRequest, id, nil, fmt.Errorf("%s: %w", header.Filename, err))
		return
	}
	s.sessions.update(id, func(sess *session) {
		*sess = session{portfolio: up.Portfolio, filename: header.Filename, rejected: up.Rejected, seen: sess.seen}
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleReset goes back to the default portfolio.
// POST /reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.get(w, r)
	s.sessions.update(id, func(sess *session) { *sess = session{seen: sess.seen} })
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleExportCSV downloads the metrics of the session's last report.
// GET /export.csv
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.get(w, r)
	report, err := s.lastReport(r, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := dividends.ExportCSV(&buf, report); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.download(w, "text/csv; charset=utf-8", fmt.Sprintf("dividends-%s.csv", report.AsOf), buf.Bytes())
}

// handleNarrative asks for the narrative of the session's last report.
// POST /narrative
func (s *Server) handleNarrative(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.get(w, r)
	if s.narrator == nil {
		http.Error(w, "narratives are not configured", http.StatusServiceUnavailable)
		return
	}
	report, err := s.lastReport(r, id)
	if err != nil {
		s.renderPage(w, http.StatusInternalServerError, id, nil, err)
		return
	}
	text, err := agent.Narrate(r.Context(), s.narrator(report), report)
	if err != nil {
		s.log.Error().Err(err).Msg("narrative failed")
		s.renderPage(w, http.StatusBadGateway, id, report, fmt.Errorf("the narrative could not be generated: %w", err))
		return
	}
	s.sessions.update(id, func(sess *session) {
		if sess.report == report {
			sess.narrative = text
		}
	})
	http.Redirect(w, r, "/#narrative", http.StatusSeeOther)
}

// handleNarrativeText downloads the narrative.
// GET /narrative.txt
func (s *Server) handleNarrativeText(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.get(w, r)
	sess := s.sessions.snapshot(id)
	if sess.narrative == "" || sess.report == nil {
		http.Error(w, "no narrative yet", http.StatusNotFound)
		return
	}
	var buf bytes.Buffer
	if err := dividends.ExportNarrative(&buf, sess.report, sess.narrative); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.download(w, "text/plain; charset=utf-8", fmt.Sprintf("narrative-%s.txt", sess.report.AsOf), buf.Bytes())
}

// handleReportPDF downloads the report, with its narrative if any.
// GET /report.pdf
func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.get(w, r)
	report, err := s.lastReport(r, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	markdown := renderer.ReportMarkdown(report)
	if sess := s.sessions.snapshot(id); sess.report == report && sess.narrative != "" {
		markdown = sess.narrative + "\n\n" + markdown
	}
	var buf bytes.Buffer
	if err := renderer.PDF(&buf, markdown, "Dividend Portfolio Analysis"); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.download(w, "application/pdf", fmt.Sprintf("dividends-%s.pdf", report.AsOf), buf.Bytes())
}

// analyze computes the report of the session's portfolio and keeps it as
// the session's last report.
func (s *Server) analyze(r *http.Request, id string) (*dividends.Report, error) {
	own := s.sessions.snapshot(id).portfolio
	p := own
	if p == nil {
		p = s.portfolio
	}
	report, err := dividends.Analyze(r.Context(), s.fetcher, p, s.options)
	if err != nil {
		return nil, err
	}
	s.sessions.update(id, func(sess *session) {
		// the portfolio may have been replaced meanwhile
		if sess.portfolio == own {
			sess.report, sess.narrative = report, ""
		}
	})
	return report, nil
}

// lastReport returns the session's last report, computing it if needed.
func (s *Server) lastReport(r *http.Request, id string) (*dividends.Report, error) {
	if report := s.sessions.snapshot(id).report; report != nil {
		return report, nil
	}
	return s.analyze(r, id)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, id string, report *dividends.Report, failure error) {
	sess := s.sessions.snapshot(id)
	data := pageData{
		Filename:   sess.filename,
		Rejected:   sess.rejected,
		Custom:     sess.portfolio != nil,
		Default:    "the default portfolio",
		CanNarrate: s.narrator != nil && report != nil,
	}
	if failure != nil {
		data.Error = failure.Error()
	}
	if report != nil {
		html, err := renderer.HTML(renderer.ReportMarkdown(report))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data.Report = template.HTML(html)
		if sess.report == report && sess.narrative != "" {
			// the narrative is model output, goldmark escapes raw html by default
			narrative, err := renderer.HTML(sess.narrative)
			if err == nil {
				data.Narrative = template.HTML(`<a id="narrative"></a>` + narrative)
			}
		}
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		s.log.Error().Err(err).Msg("page rendering failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) download(w http.ResponseWriter, contentType, filename string, content []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(content)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
