package audit

import (
	"net/http"
	"strings"

	"github.com/noah-isme/ishtar-commerce/internal/common"
)

// Handler serves the audit trail to administrators.
type Handler struct {
	Store Store
}

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	Action     string
	ActorRole  string
	EntityType string
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Entry) bool {
	return (f.Action == "" || e.Action == f.Action) &&
		(f.ActorRole == "" || e.ActorRole == f.ActorRole) &&
		(f.EntityType == "" || e.EntityType == f.EntityType)
}

func (f Filter) empty() bool {
	return f == Filter{}
}

// List handles GET /admin/audit-logs. Supports limit, action, actorRole and
// entityType query parameters; entries come back newest first.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, ErrStoreNotConfigured.Error(), nil)
		return
	}
	q := r.URL.Query()
	limit := common.ParseLimit(r, 50, 200)
	filter := Filter{
		Action:     strings.TrimSpace(q.Get("action")),
		ActorRole:  strings.ToLower(strings.TrimSpace(q.Get("actorRole"))),
		EntityType: strings.TrimSpace(q.Get("entityType")),
	}

	fetch := limit
	if !filter.empty() {
		fetch = DefaultCapacity
	}
	entries, err := h.Store.List(r.Context(), fetch)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "unable to fetch audit logs", nil)
		return
	}
	out := make([]Entry, 0, min(limit, len(entries)))
	for _, e := range entries {
		if len(out) == limit {
			break
		}
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	common.Data(w, http.StatusOK, out)
}
