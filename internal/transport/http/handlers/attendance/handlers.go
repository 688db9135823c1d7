package attendancehandler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/attendance"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/requestctx"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Service interface {
	ClockIn(ctx context.Context, userID, notes, ip string) (attendance.Record, error)
	ClockOut(ctx context.Context, userID string) (attendance.Record, error)
	Today(ctx context.Context, userID string) (*attendance.Record, error)
	History(ctx context.Context, userID string, limit, offset int) ([]attendance.Record, int, error)
	List(ctx context.Context, filter attendance.Filter, limit, offset int) ([]attendance.Record, int, error)
	Export(ctx context.Context, month time.Time) ([]byte, error)
}

// Jobs runs the auto clock-out on demand.
type Jobs interface {
	AutoClockOut(ctx context.Context) (any, error)
}

type Handler struct {
	Service Service
	Jobs    Jobs
	Audit   shared.Auditor
	Now     func() time.Time
}

func NewHandler(service Service, jobs Jobs, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Jobs: jobs, Audit: auditor, Now: time.Now}
}

type clockInRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/clock-in", h.handleClockIn)
		r.Post("/clock-out", h.handleClockOut)
		r.Get("/today", h.handleToday)
		r.Get("/history", h.handleHistory)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/", h.handleList)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/export", h.handleExport)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/auto-clock-out/run", h.handleAutoClockOut)
	})
}

func (h *Handler) handleClockIn(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload clockInRequest
	if r.ContentLength != 0 {
		if err := shared.DecodeJSON(r, &payload); err != nil {
			shared.WriteError(w, r, err)
			return
		}
	}
	record, err := h.Service.ClockIn(r.Context(), user.UserID, payload.Notes, requestctx.GetClientIP(r.Context()))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Created(w, map[string]any{
		"status":  "success",
		"message": attendance.SuccessMessage,
		"record":  record,
	}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleClockOut(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	record, err := h.Service.ClockOut(r.Context(), user.UserID)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, record, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	record, err := h.Service.Today(r.Context(), user.UserID)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, map[string]any{"clockedIn": record != nil, "record": record}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 31, 366)
	items, total, err := h.Service.History(r.Context(), user.UserID, page.Limit, page.Offset)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, shared.NewPage(items, total, page), requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := shared.ParseDate(q.Get("from"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "from must be YYYY-MM-DD", requestctx.GetRequestID(r.Context()))
		return
	}
	to, err := shared.ParseDate(q.Get("to"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "to must be YYYY-MM-DD", requestctx.GetRequestID(r.Context()))
		return
	}
	filter := attendance.Filter{
		UserID:       q.Get("user"),
		DepartmentID: q.Get("department"),
		Status:       q.Get("status"),
		From:         from,
		To:           to,
	}
	page := shared.ParsePagination(r, 100, 500)
	items, total, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, shared.NewPage(items, total, page), requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	month, err := shared.ParseMonth(r, h.Now())
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_month", "month must be YYYY-MM", requestctx.GetRequestID(r.Context()))
		return
	}
	book, err := h.Service.Export(r.Context(), month)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"attendance-"+month.Format("2006-01")+".xlsx", book)
}

func (h *Handler) handleAutoClockOut(w http.ResponseWriter, r *http.Request) {
	if h.Jobs == nil {
		api.Fail(w, http.StatusServiceUnavailable, "jobs_unavailable", "background jobs are not configured", requestctx.GetRequestID(r.Context()))
		return
	}
	result, err := h.Jobs.AutoClockOut(r.Context())
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "attendance.auto_clock_out", "attendance", "", nil, result)
	api.Success(w, result, requestctx.GetRequestID(r.Context()))
}
