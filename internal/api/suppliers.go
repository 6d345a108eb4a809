package api

import (
	"net/http"
	"strings"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
)

type supplierRequest struct {
	SupplierName  string `json:"supplier_name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

func (req supplierRequest) supplier() domain.Supplier {
	return domain.Supplier{
		SupplierName:  strings.TrimSpace(req.SupplierName),
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		Address:       strings.TrimSpace(req.Address),
	}
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.store.ListSuppliers(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.respondFailure(w, r, err, "unable to list suppliers")
		return
	}
	respondJSON(w, http.StatusOK, suppliers)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid supplier id")
		return
	}
	supplier, err := h.store.GetSupplier(r.Context(), id)
	if err != nil {
		h.respondFailure(w, r, err, "unable to fetch supplier")
		return
	}
	respondJSON(w, http.StatusOK, supplier)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.SupplierName) == "" {
		respondError(w, http.StatusBadRequest, "supplier_name is required")
		return
	}
	supplier, err := h.store.CreateSupplier(r.Context(), req.supplier())
	if err != nil {
		h.respondFailure(w, r, err, "unable to create supplier")
		return
	}
	respondJSON(w, http.StatusCreated, supplier)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid supplier id")
		return
	}
	var req supplierRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.SupplierName) == "" {
		respondError(w, http.StatusBadRequest, "supplier_name is required")
		return
	}
	sup := req.supplier()
	sup.ID = id
	supplier, err := h.store.UpdateSupplier(r.Context(), sup)
	if err != nil {
		h.respondFailure(w, r, err, "unable to update supplier")
		return
	}
	respondJSON(w, http.StatusOK, supplier)
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, roleAdmin) {
		return
	}
	id, err := pathInt64(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid supplier id")
		return
	}
	if err := h.store.DeleteSupplier(r.Context(), id); err != nil {
		h.respondFailure(w, r, err, "unable to delete supplier")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
