package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/azzamfsta/Pharmacy-Management-System/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func reportQuery(r *http.Request) report.Query {
	q := r.URL.Query()
	return report.Query{
		Start:  q.Get("start"),
		End:    q.Get("end"),
		Method: q.Get("method"),
	}
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.reports.Dashboard(r.Context())
	if err != nil {
		h.respondFailure(w, r, err, "unable to build dashboard")
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func (h *Handler) reportSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.Summary(r.Context())
	if err != nil {
		h.respondFailure(w, r, err, "unable to fetch summary")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	data, err := h.reports.Sales(r.Context(), reportQuery(r))
	if err != nil {
		h.respondFailure(w, r, err, "unable to fetch sales report")
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func (h *Handler) paymentsReport(w http.ResponseWriter, r *http.Request) {
	data, err := h.reports.Payments(r.Context(), reportQuery(r))
	if err != nil {
		h.respondFailure(w, r, err, "unable to fetch payments report")
		return
	}
	respondJSON(w, http.StatusOK, data)
}

// exportSales buffers the workbook so a failure can still answer in JSON.
func (h *Handler) exportSales(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.reports.ExportSales(r.Context(), reportQuery(r), &buf); err != nil {
		h.respondFailure(w, r, err, "unable to export sales")
		return
	}
	filename := fmt.Sprintf("sales-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
