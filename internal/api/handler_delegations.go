package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) createDelegation(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body CreateDelegationBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := body.toDomain()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	d, err := h.delegations.Create(r.Context(), p, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, delegationToAPI(*d))
}

func (h *Handler) revokeDelegation(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.delegations.Revoke(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listDelegations(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	list, err := h.delegations.ListByDelegator(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]DelegationResponse, len(list))
	for i, d := range list {
		out[i] = delegationToAPI(d)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": out})
}
