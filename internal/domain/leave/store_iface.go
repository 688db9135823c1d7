package leave

import (
	"context"
	"time"
)

type StoreAPI interface {
	ProfileID(ctx context.Context, kind Kind, userID string) (string, error)
	TeamLeadUserID(ctx context.Context, employeeProfileID string) (string, error)
	CreateReport(ctx context.Context, kind Kind, ownerID string, draft Draft) (Report, error)
	GetReport(ctx context.Context, kind Kind, id string) (Report, error)
	ListReports(ctx context.Context, kind Kind, filter Filter, limit, offset int) ([]Report, int, error)
	SetStatus(ctx context.Context, kind Kind, id string, status int, reviewerID string) (bool, error)
	ApprovedOn(ctx context.Context, kind Kind, userID string, day time.Time) (*Report, error)
}

// Notifier delivers in-app and email notifications.
type Notifier interface {
	Notify(ctx context.Context, userIDs []string, ntype, title, body string) error
	NotifyAdmins(ctx context.Context, extra []string, ntype, title, body string) error
}
