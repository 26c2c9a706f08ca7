package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"hr-approvals/internal/domain"
	"hr-approvals/internal/service/approval"
)

// listApprovers enumerates who may approve requests of an employee. The type
// query parameter narrows delegates to those covering one request category;
// without it every active delegate is listed with its delegation_type.
func (h *Handler) listApprovers(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	t := domain.DelegationType(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("type"))))
	if t != approval.AnyType && !t.Valid() {
		h.writeError(w, r, domain.ErrValidation("invalid type %q", t))
		return
	}

	emp, err := h.visibleEmployee(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	list, err := h.resolver.ApproversForEmployee(r.Context(), emp.ID, t)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := map[string]interface{}{
		"employee_id": emp.ID,
		"approvers":   approversToAPI(list),
	}
	if t != approval.AnyType {
		resp["type"] = t
	}
	writeJSON(w, http.StatusOK, resp)
}

// getBalance reports a year's balance without creating it.
func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 9999 {
		h.writeError(w, r, domain.ErrValidation("year must be a four-digit number"))
		return
	}

	emp, err := h.visibleEmployee(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	b, stored, err := h.ledger.Lookup(r.Context(), emp.ID, year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := balanceToAPI(*b)
	resp.Provisional = !stored
	writeJSON(w, http.StatusOK, resp)
}
