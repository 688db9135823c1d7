package attendance

import (
	"context"
	"time"

	"hrdesk/internal/domain/leave"
)

type StoreAPI interface {
	Subject(ctx context.Context, userID string) (Subject, error)
	HasRecord(ctx context.Context, userID string, day time.Time) (bool, error)
	ProfileDepartment(ctx context.Context, userID string) (*string, error)
	CreateRecord(ctx context.Context, rec Record) (Record, error)
	RecordFor(ctx context.Context, userID string, day time.Time) (Record, error)
	ClockOut(ctx context.Context, recordID, userID string, at time.Time) (Record, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]Record, int, error)
	ExportRows(ctx context.Context, from, to time.Time) ([]ExportRow, error)
	CloseStale(ctx context.Context, before time.Time, zone string) ([]string, error)
}

// LeaveFinder reports approved leave covering a day.
type LeaveFinder interface {
	ActiveOn(ctx context.Context, userID string, day time.Time) (leave.Coverage, error)
}

type Notifier interface {
	Notify(ctx context.Context, userIDs []string, ntype, title, body string) error
}
