package shared

import (
	"context"
	"log/slog"
	"net/http"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/requestctx"
	"hrdesk/internal/transport/http/middleware"
)

type Auditor interface {
	Record(ctx context.Context, e audit.Entry) error
}

// RecordAudit stores an admin action. Failures are logged, never returned.
func RecordAudit(r *http.Request, auditor Auditor, action, entityType, entityID string, before, after any) {
	if auditor == nil {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	entry := audit.Entry{
		ActorID:    user.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestctx.GetRequestID(r.Context()),
		IP:         requestctx.GetClientIP(r.Context()),
		Before:     before,
		After:      after,
	}
	if err := auditor.Record(r.Context(), entry); err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}
