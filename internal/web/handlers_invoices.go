package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/ledger/internal/core"
	"github.com/JonMunkholm/ledger/internal/invoicepdf"
	"github.com/go-chi/chi/v5"
)

// maxInvoiceBody bounds JSON bodies for add and edit.
const maxInvoiceBody = 64 << 10

// invoiceResponse is an invoice as returned by the API.
type invoiceResponse struct {
	core.InvoiceRecord
	AmountValue float64 `json:"amount_value"`
}

func toResponse(rec core.InvoiceRecord) invoiceResponse {
	if rec.Descriptions == nil {
		rec.Descriptions = []string{}
	}
	return invoiceResponse{InvoiceRecord: rec, AmountValue: rec.AmountValue()}
}

func toResponses(recs []core.InvoiceRecord) []invoiceResponse {
	out := make([]invoiceResponse, len(recs))
	for i, rec := range recs {
		out[i] = toResponse(rec)
	}
	return out
}

// invoiceRequest is the body of add and edit requests. Descriptions may be
// sent as a list or as a single "description" text, which is split the same
// way as an imported cell.
type invoiceRequest struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Descriptions []string `json:"descriptions"`
	Description  string   `json:"description"`
	Amount       string   `json:"amount"`
	Date         string   `json:"date"`
}

func (req invoiceRequest) record() core.InvoiceRecord {
	items := req.Descriptions
	if len(items) == 0 && req.Description != "" {
		items = core.NormalizeDescription(req.Description)
	}
	return core.InvoiceRecord{
		ID:           req.ID,
		CustomerName: req.Name,
		Descriptions: items,
		Amount:       req.Amount,
		Date:         req.Date,
	}
}

func decodeInvoice(w http.ResponseWriter, r *http.Request) (invoiceRequest, bool) {
	var req invoiceRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInvoiceBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid invoice JSON: "+err.Error())
		return invoiceRequest{}, false
	}
	return req, true
}

// handleListInvoices lists the ledger, filtered by ?name= when given.
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.SearchInvoices(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(recs))
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rec))
}

func (s *Server) handleAddInvoice(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeInvoice(w, r)
	if !ok {
		return
	}
	rec, err := s.service.AddInvoice(r.Context(), req.record())
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/invoices/"+rec.ID)
	writeJSON(w, http.StatusCreated, toResponse(rec))
}

// handleEditInvoice overwrites an invoice. The id in the path wins over any
// id in the body.
func (s *Server) handleEditInvoice(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeInvoice(w, r)
	if !ok {
		return
	}
	req.ID = chi.URLParam(r, "id")
	rec, err := s.service.EditInvoice(r.Context(), req.record())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rec))
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteInvoice(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleInvoicePDF renders a printable invoice.
func (s *Server) handleInvoicePDF(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.pdf.Render(&buf, rec); err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", invoicepdf.ContentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+invoicepdf.FileName(rec)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// handleCustomers returns customer names for autocompletion, optionally
// narrowed by a ?q= prefix.
func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	names, err := s.service.CustomerNames(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filterPrefix(names, r.URL.Query().Get("q")))
}

// handleDescriptions returns line items used before, for autocompletion.
func (s *Server) handleDescriptions(w http.ResponseWriter, r *http.Request) {
	items, err := s.service.DescriptionSuggestions(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filterPrefix(items, r.URL.Query().Get("q")))
}

// filterPrefix keeps the values starting with prefix, case-insensitively.
// It never returns nil so the JSON is always an array.
func filterPrefix(values []string, prefix string) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if prefix == "" || strings.HasPrefix(strings.ToLower(v), prefix) {
			out = append(out, v)
		}
	}
	return out
}
