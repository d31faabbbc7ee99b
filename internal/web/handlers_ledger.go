package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/ledger/internal/core"
	"github.com/JonMunkholm/ledger/internal/spreadsheet"
)

//go:embed templates
var templateFiles embed.FS

var dashboardTmpl = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"money":   formatMoney,
	"percent": percentOf,
}).ParseFS(templateFiles, "templates/dashboard.html"))

// dashboardData is what the dashboard template renders.
type dashboardData struct {
	Summary     core.Summary
	MaxCustomer float64
	Relations   core.Relations
	GeneratedAt time.Time
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// percentOf scales v against max for the chart bars.
func percentOf(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return v / max * 100
}

// handleDashboard renders the read-only reporting page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.Summary(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	data := dashboardData{
		Summary:     summary,
		Relations:   s.service.Ledger().Relations(),
		GeneratedAt: time.Now(),
	}
	if len(summary.TopCustomers) > 0 {
		data.MaxCustomer = summary.TopCustomers[0].Total
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, data); err != nil {
		respondError(w, r, fmt.Errorf("render dashboard: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleSummary returns the reporting summary as JSON.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.Summary(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if summary.TopCustomers == nil {
		summary.TopCustomers = []core.CustomerTotal{}
	}
	writeJSON(w, http.StatusOK, summary)
}

// readUpload parses a multipart upload of a .csv or .xlsx file into rows.
// It writes the error response itself and reports false on failure.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, [][]string, bool) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondError(w, r, fmt.Errorf("read upload: %w", err))
		return "", nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "no file provided")
		return "", nil, false
	}
	defer file.Close()

	var rows [][]string
	switch ext := strings.ToLower(filepath.Ext(header.Filename)); ext {
	case ".csv":
		rows, err = core.ReadCSV(file)
	case ".xlsx":
		rows, err = spreadsheet.ReadRows(file)
	default:
		err = fmt.Errorf("unsupported file type %q", ext)
	}
	if err != nil {
		respondError(w, r, err)
		return "", nil, false
	}
	return header.Filename, rows, true
}

// handleImport replaces the whole ledger with an uploaded .csv or .xlsx
// file. The form must carry confirm=true.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	source, rows, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	if r.FormValue("confirm") != "true" {
		writeError(w, r, http.StatusBadRequest, "importing replaces every invoice in the ledger; resend with confirm=true")
		return
	}

	result, err := s.service.ImportRows(r.Context(), source, rows)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handlePreviewImport reports what importing the uploaded file would change.
func (s *Server) handlePreviewImport(w http.ResponseWriter, r *http.Request) {
	source, rows, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	preview, err := s.service.PreviewImport(r.Context(), source, rows)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleExport downloads the ledger as CSV, or as XLSX with ?format=xlsx.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	render, contentType, ext := core.ExportFunc(core.WriteCSV), "text/csv; charset=utf-8", "csv"
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "csv":
	case "xlsx":
		render, contentType, ext = spreadsheet.WriteLedger, spreadsheet.ContentType, "xlsx"
	default:
		writeError(w, r, http.StatusBadRequest, "format must be csv or xlsx")
		return
	}

	var buf bytes.Buffer
	if _, err := s.service.Export(r.Context(), &buf, render); err != nil {
		respondError(w, r, err)
		return
	}

	filename := fmt.Sprintf("ledger-%s.%s", time.Now().Format("2006-01-02"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// handleHealth reports liveness and import activity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"imports": s.service.ImportStatus(),
	})
}
