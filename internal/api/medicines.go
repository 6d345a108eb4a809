package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/report"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/seed"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/store"
)

const maxImportBytes = 10 << 20

type medicineRequest struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	GroupName   string          `json:"group_name"`
	Stock       int64           `json:"stock"`
	Price       decimal.Decimal `json:"price"`
	HowToUse    string          `json:"how_to_use"`
	SideEffects string          `json:"side_effects"`
}

func (req medicineRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if req.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", domain.ErrInvalidInput)
	}
	if req.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

func (req medicineRequest) medicine() domain.Medicine {
	return domain.Medicine{
		Code:        strings.TrimSpace(req.Code),
		Name:        strings.TrimSpace(req.Name),
		GroupName:   strings.TrimSpace(req.GroupName),
		Stock:       req.Stock,
		Price:       req.Price,
		HowToUse:    strings.TrimSpace(req.HowToUse),
		SideEffects: strings.TrimSpace(req.SideEffects),
	}
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	medicines, err := h.store.ListMedicines(r.Context(), store.MedicineFilter{
		Search:        q.Get("search"),
		Group:         strings.TrimSpace(q.Get("group")),
		Uncategorized: queryBool(r, "uncategorized"),
	})
	if err != nil {
		h.respondFailure(w, r, err, "unable to list medicines")
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	medicine, err := h.store.GetMedicine(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondFailure(w, r, err, "unable to fetch medicine")
		return
	}
	respondJSON(w, http.StatusOK, medicine)
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	var req medicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	medicine, err := h.store.CreateMedicine(r.Context(), req.medicine())
	if err != nil {
		h.respondFailure(w, r, err, "unable to create medicine")
		return
	}
	h.refreshCatalog(r)
	respondJSON(w, http.StatusCreated, medicine)
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	var req medicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m := req.medicine()
	m.ID = chi.URLParam(r, "id")
	medicine, err := h.store.UpdateMedicine(r.Context(), m)
	if err != nil {
		h.respondFailure(w, r, err, "unable to update medicine")
		return
	}
	h.refreshCatalog(r)
	respondJSON(w, http.StatusOK, medicine)
}

func (h *Handler) restockMedicine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Stock *int64 `json:"stock"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Stock == nil || *req.Stock < 0 {
		respondError(w, http.StatusBadRequest, "stock must be zero or greater")
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.store.SetStock(r.Context(), id, *req.Stock); err != nil {
		h.respondFailure(w, r, err, "unable to update stock")
		return
	}
	medicine, err := h.store.GetMedicine(r.Context(), id)
	if err != nil {
		h.respondFailure(w, r, err, "unable to fetch medicine")
		return
	}
	h.refreshCatalog(r)
	respondJSON(w, http.StatusOK, medicine)
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, roleAdmin) {
		return
	}
	if err := h.store.DeleteMedicine(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondFailure(w, r, err, "unable to delete medicine")
		return
	}
	h.refreshCatalog(r)
	w.WriteHeader(http.StatusNoContent)
}

// importMedicines accepts a multipart "file" field holding a .csv or .xlsx
// catalog.
func (h *Handler) importMedicines(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, roleAdmin) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "multipart field file is required")
		return
	}
	defer file.Close()

	var result seed.Result
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		result, err = seed.ImportCSV(r.Context(), h.store, file)
	case ".xlsx":
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			respondError(w, http.StatusBadRequest, "unable to read upload")
			return
		}
		result, err = seed.ImportXLSX(r.Context(), h.store, data)
	default:
		respondError(w, http.StatusBadRequest, "file must be .csv or .xlsx")
		return
	}
	if err != nil {
		h.respondFailure(w, r, err, "unable to import medicines")
		return
	}
	h.logger.Printf("inventory: import file=%s imported=%d skipped=%d", header.Filename, result.Imported, result.Skipped)
	h.refreshCatalog(r)
	respondJSON(w, http.StatusOK, result)
}

type inventorySummary struct {
	Medicines int64                 `json:"medicines_count"`
	Groups    int64                 `json:"groups_count"`
	Threshold int64                 `json:"low_stock_threshold"`
	Shortages []report.ShortageItem `json:"shortages"`
}

func (h *Handler) inventorySummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	medicines, err := h.store.CountMedicines(ctx)
	if err != nil {
		h.respondFailure(w, r, err, "unable to count medicines")
		return
	}
	groups, err := h.store.CountGroups(ctx)
	if err != nil {
		h.respondFailure(w, r, err, "unable to count groups")
		return
	}
	shortages, err := h.reports.Shortages(ctx)
	if err != nil {
		h.respondFailure(w, r, err, "unable to fetch shortages")
		return
	}
	respondJSON(w, http.StatusOK, inventorySummary{
		Medicines: medicines,
		Groups:    groups,
		Threshold: h.reports.Threshold(),
		Shortages: shortages,
	})
}

func (h *Handler) shortages(w http.ResponseWriter, r *http.Request) {
	items, err := h.reports.Shortages(r.Context())
	if err != nil {
		h.respondFailure(w, r, err, "unable to fetch shortages")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.store.ListGroups(r.Context())
	if err != nil {
		h.respondFailure(w, r, err, "unable to list groups")
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, roleAdmin) {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	group, err := h.store.CreateGroup(r.Context(), req.Name)
	if errors.Is(err, domain.ErrInvalidInput) {
		respondError(w, http.StatusBadRequest, "name is required and must not be "+domain.Uncategorized)
		return
	}
	if err != nil {
		h.respondFailure(w, r, err, "unable to create group")
		return
	}
	respondJSON(w, http.StatusCreated, group)
}

func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, roleAdmin) {
		return
	}
	if err := h.store.DeleteGroup(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.respondFailure(w, r, err, "unable to delete group")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// refreshCatalog drops the cached sellable list after a stock change. Open
// sessions keep their snapshot.
func (h *Handler) refreshCatalog(r *http.Request) {
	if h.catalog == nil {
		return
	}
	if _, err := h.catalog.Reload(r.Context()); err != nil {
		h.logger.Printf("inventory: catalog reload failed: %v", err)
	}
}
