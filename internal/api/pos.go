package api

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/azzamfsta/Pharmacy-Management-System/internal/pos"
)

// responseSurface prints a document into the HTTP response. The document
// is buffered and sent on Close so that nothing reaches the client when
// rendering fails halfway. Once sent is set the status line is out and
// errors can only be logged.
type responseSurface struct {
	w      http.ResponseWriter
	accept string
	sent   bool
}

func (s *responseSurface) Open(title string) (io.WriteCloser, error) {
	if !acceptsHTML(s.accept) {
		return nil, errors.New("client does not accept text/html")
	}
	return &responseDocument{surface: s, title: title}, nil
}

type responseDocument struct {
	surface *responseSurface
	title   string
	buf     bytes.Buffer
}

func (d *responseDocument) Write(p []byte) (int, error) {
	return d.buf.Write(p)
}

func (d *responseDocument) Close() error {
	w := d.surface.w
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="`+d.title+`.html"`)
	w.WriteHeader(http.StatusOK)
	d.surface.sent = true
	_, err := w.Write(d.buf.Bytes())
	return err
}

func acceptsHTML(accept string) bool {
	if strings.TrimSpace(accept) == "" {
		return true
	}
	for _, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if q, ok := params["q"]; ok {
			if v, err := strconv.ParseFloat(q, 64); err == nil && v == 0 {
				continue
			}
		}
		switch mediaType {
		case "text/html", "text/*", "*/*":
			return true
		}
	}
	return false
}

func lineIndex(r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	return index, err == nil && index >= 0
}

func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.Open(r.Context(), currentSession(r).UserID)
	if err != nil {
		h.respondFailure(w, r, err, "unable to open session")
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.Get(currentSession(r).UserID, chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondFailure(w, r, err, "unable to fetch session")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(currentSession(r).UserID, chi.URLParam(r, "sessionID")); err != nil {
		h.respondFailure(w, r, err, "unable to close session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) searchCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.sessions.Search(currentSession(r).UserID, chi.URLParam(r, "sessionID"), r.URL.Query().Get("q"), queryInt(r, "limit", 0))
	if err != nil {
		h.respondFailure(w, r, err, "unable to search catalog")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

type addItemRequest struct {
	MedicineID string `json:"medicine_id"`
	Quantity   int64  `json:"quantity"`
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.MedicineID) == "" {
		respondError(w, http.StatusBadRequest, "medicine_id is required")
		return
	}
	view, err := h.sessions.AddItem(currentSession(r).UserID, chi.URLParam(r, "sessionID"), req.MedicineID, req.Quantity)
	if err != nil {
		h.respondFailure(w, r, err, "unable to add item")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	index, ok := lineIndex(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid line index")
		return
	}
	view, removed, err := h.sessions.RemoveItem(currentSession(r).UserID, chi.URLParam(r, "sessionID"), index)
	if err != nil {
		h.respondFailure(w, r, err, "unable to remove item")
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, pos.ErrLineNotFound.Error())
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) setCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerName string `json:"customer_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := h.sessions.SetCustomer(currentSession(r).UserID, chi.URLParam(r, "sessionID"), req.CustomerName)
	if err != nil {
		h.respondFailure(w, r, err, "unable to set customer")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method"`
	Date          string `json:"transaction_date"`
	PrintInvoice  bool   `json:"print_invoice"`
}

type checkoutFailure struct {
	Error     string   `json:"error"`
	Line      *int     `json:"failed_line,omitempty"`
	Committed int      `json:"committed_lines"`
	Session   pos.View `json:"session"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := h.sessions.Checkout(r.Context(), currentSession(r).UserID, chi.URLParam(r, "sessionID"), pos.CheckoutRequest{
		PaymentMethod: req.PaymentMethod,
		Date:          req.Date,
		PrintInvoice:  req.PrintInvoice,
	})
	var commitErr *pos.CommitError
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, view)
	case errors.As(err, &commitErr):
		line := commitErr.Index
		h.logger.Printf("pos: checkout session=%s failed at line=%d committed=%d: %v", view.ID, line, commitErr.Committed, commitErr.Err)
		respondJSON(w, statusFor(err), checkoutFailure{Error: err.Error(), Line: &line, Committed: commitErr.Committed, Session: view})
	case view.ID != "" && statusFor(err) != http.StatusInternalServerError:
		respondJSON(w, statusFor(err), checkoutFailure{Error: err.Error(), Session: view})
	default:
		h.respondFailure(w, r, err, "unable to complete checkout")
	}
}

func (h *Handler) printLabel(w http.ResponseWriter, r *http.Request) {
	index, ok := lineIndex(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid line index")
		return
	}
	surface := &responseSurface{w: w, accept: r.Header.Get("Accept")}
	err := h.sessions.Label(currentSession(r).UserID, chi.URLParam(r, "sessionID"), index, surface)
	h.finishPrint(w, r, surface, err, "unable to print label")
}

func (h *Handler) printInvoice(w http.ResponseWriter, r *http.Request) {
	surface := &responseSurface{w: w, accept: r.Header.Get("Accept")}
	err := h.sessions.Invoice(currentSession(r).UserID, chi.URLParam(r, "sessionID"), surface)
	h.finishPrint(w, r, surface, err, "unable to print invoice")
}

func (h *Handler) finishPrint(w http.ResponseWriter, r *http.Request, surface *responseSurface, err error, fallback string) {
	switch {
	case err == nil:
	case surface.sent:
		h.logger.Printf("%s %s: document write failed: %v", r.Method, r.URL.Path, err)
	default:
		h.respondFailure(w, r, err, fallback)
	}
}
