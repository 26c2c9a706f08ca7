package api

import (
	"net/http"
	"time"

	"hr-approvals/internal/domain"
)

var auditReaders = []string{string(domain.RoleAuditor), string(domain.RoleHRAdmin)}

// listAudit returns audit entries of the caller's tenant, oldest first. The
// super-principal may pass tenant_id to pick a tenant or omit it to read all.
func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !h.roles.Satisfies(auditReaders, p.RawRole) {
		h.writeError(w, r, domain.ErrAccessDenied("audit log requires the auditor or HR role"))
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := domain.AuditFilter{Page: page}
	scope := h.tenants.Resolve(p)
	switch {
	case !scope.IsUnrestricted():
		tenant := scope.TenantID()
		if err := h.tenants.AuthorizePayloadTenant(scope, optional(q.Get("tenant_id"))).Err(); err != nil {
			h.writeError(w, r, err)
			return
		}
		filter.TenantID = &tenant
	default:
		filter.TenantID = optional(q.Get("tenant_id"))
	}
	filter.EntityID = optional(q.Get("entity_id"))
	filter.ActorID = optional(q.Get("actor_id"))
	filter.Action = optional(q.Get("action"))
	if s := q.Get("since"); s != "" {
		since, err := time.Parse(time.RFC3339, s)
		if err != nil {
			h.writeError(w, r, domain.ErrValidation("since must be an RFC 3339 timestamp"))
			return
		}
		filter.Since = &since
	}

	entries, total, err := h.audit.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = auditEntryToAPI(e)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":            out,
		"next_page_token": domain.NextPageToken(page.Offset(), page.Limit(), total),
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
