package httptransport

import (
	"net/http"
	"time"

	"github.com/FedassaMeg/haven-sub012/internal/audit"
	"github.com/FedassaMeg/haven-sub012/internal/platform/middleware"
	"github.com/FedassaMeg/haven-sub012/internal/policy"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
)

// handleQueryAudit dispatches on query parameters to one of the audit
// store's views. Exactly one filter family is honored per request, checked
// in a fixed order: actor, resource, rule, highRisk, then date range.
func (h *Handler) handleQueryAudit(w http.ResponseWriter, r *http.Request) {
	access, ok := middleware.GetAccessContext(r.Context())
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing access context"))
		return
	}
	if !access.HasAnyRole(policy.RoleAdministrator, policy.RoleSupervisor) {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "audit queries require an administrative role"))
		return
	}

	q := r.URL.Query()
	ctx := r.Context()

	var (
		events []audit.Event
		err    error
	)
	switch {
	case q.Get("actor") != "":
		var actor domain.ActorID
		actor, err = domain.ParseActorID(q.Get("actor"))
		if err == nil {
			events, err = h.auditStore.ListByActor(ctx, actor)
		}
	case q.Get("resourceType") != "":
		events, err = h.auditStore.ListByResource(ctx, q.Get("resourceType"), q.Get("resourceId"))
	case q.Get("rule") != "":
		events, err = h.auditStore.ListByRule(ctx, q.Get("rule"))
	case q.Get("highRisk") == "true":
		var from, to time.Time
		from, to, err = parseRange(q.Get("from"), q.Get("to"))
		if err == nil {
			events, err = h.auditStore.ListHighRisk(ctx, from, to)
		}
	case q.Get("from") != "" || q.Get("to") != "":
		var from, to time.Time
		from, to, err = parseRange(q.Get("from"), q.Get("to"))
		if err == nil {
			events, err = h.auditStore.ListByDateRange(ctx, from, to)
		}
	default:
		err = dErrors.New(dErrors.CodeInvalidInput, "a filter is required: actor, resourceType, rule, highRisk, or a date range")
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

// parseRange reads RFC 3339 bounds, defaulting to the trailing 24 hours
// when either end is omitted.
func parseRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.Add(-24 * time.Hour)
	var err error
	if toRaw != "" {
		to, err = time.Parse(time.RFC3339, toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "to must be RFC 3339")
		}
		from = to.Add(-24 * time.Hour)
	}
	if fromRaw != "" {
		from, err = time.Parse(time.RFC3339, fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "from must be RFC 3339")
		}
	}
	return from, to, nil
}
