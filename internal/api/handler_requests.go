package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"hr-approvals/internal/domain"
)

func (h *Handler) createLeaveRequest(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body CreateLeaveRequestBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := body.toDomain()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ev, err := h.workflow.Create(r.Context(), p, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.notify(r.Context(), ev)
	writeJSON(w, http.StatusCreated, transitionToAPI(ev))
}

func (h *Handler) getLeaveRequest(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	lr, err := h.workflow.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leaveRequestToAPI(*lr))
}

func (h *Handler) listEmployeeLeaveRequests(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	list, total, err := h.workflow.ListForEmployee(r.Context(), p, chi.URLParam(r, "id"), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := LeaveRequestList{
		Data:          make([]LeaveRequestResponse, len(list)),
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
	}
	for i, lr := range list {
		out.Data[i] = leaveRequestToAPI(lr)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) supervisorApprove(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body SupervisorApproveBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	ev, err := h.workflow.SupervisorApprove(r.Context(), p, domain.SupervisorApproveRequest{
		RequestID:          chi.URLParam(r, "id"),
		SkipHierarchyCheck: body.SkipHierarchyCheck,
	})
	h.respondTransition(w, r, ev, err)
}

func (h *Handler) finalApprove(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ev, err := h.workflow.FinalApprove(r.Context(), p, domain.FinalApproveRequest{RequestID: chi.URLParam(r, "id")})
	h.respondTransition(w, r, ev, err)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body RejectBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	ev, err := h.workflow.Reject(r.Context(), p, domain.RejectRequest{
		RequestID: chi.URLParam(r, "id"),
		Reason:    body.Reason,
		Stage:     domain.ApprovalStage(strings.ToUpper(strings.TrimSpace(body.Stage))),
	})
	h.respondTransition(w, r, ev, err)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ev, err := h.workflow.Cancel(r.Context(), p, domain.CancelRequest{RequestID: chi.URLParam(r, "id")})
	h.respondTransition(w, r, ev, err)
}

func (h *Handler) markApplied(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body MarkAppliedBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	ev, err := h.workflow.MarkApplied(r.Context(), p, domain.MarkAppliedRequest{
		RequestID: chi.URLParam(r, "id"),
		BatchRef:  body.BatchRef,
	})
	h.respondTransition(w, r, ev, err)
}

func (h *Handler) respondTransition(w http.ResponseWriter, r *http.Request, ev *domain.TransitionEvent, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.notify(r.Context(), ev)
	writeJSON(w, http.StatusOK, transitionToAPI(ev))
}

// pageFromQuery reads optional max_results/page_token query params.
func pageFromQuery(r *http.Request) (domain.PageRequest, error) {
	q := r.URL.Query()
	page := domain.PageRequest{PageToken: q.Get("page_token")}
	if s := q.Get("max_results"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return domain.PageRequest{}, domain.ErrValidation("max_results must be a non-negative integer")
		}
		page.MaxResults = n
	}
	return page, nil
}
