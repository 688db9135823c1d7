package leavehandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/leave"
	"hrdesk/internal/requestctx"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Service interface {
	Apply(ctx context.Context, user auth.UserContext, in leave.Input) (leave.Report, error)
	List(ctx context.Context, user auth.UserContext, kind leave.Kind, status *int, limit, offset int) ([]leave.Report, int, error)
	Get(ctx context.Context, user auth.UserContext, kind leave.Kind, id string) (leave.Report, error)
	Approve(ctx context.Context, reviewer auth.UserContext, kind leave.Kind, id string) (leave.Report, error)
	Reject(ctx context.Context, reviewer auth.UserContext, kind leave.Kind, id string) (leave.Report, error)
}

type Handler struct {
	Service Service
	Audit   shared.Auditor
}

func NewHandler(service Service, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireRole(auth.RoleEmployee, auth.RoleManager)).Post("/", h.handleApply)
		r.Get("/{kind}", h.handleList)
		r.Get("/{kind}/{id}", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleManager)).Post("/{kind}/{id}/approve", h.handleReview(true))
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleManager)).Post("/{kind}/{id}/reject", h.handleReview(false))
	})
}

var statusNames = map[string]int{
	"pending":  leave.StatusPending,
	"approved": leave.StatusApproved,
	"rejected": leave.StatusRejected,
	"0":        leave.StatusPending,
	"1":        leave.StatusApproved,
	"-1":       leave.StatusRejected,
}

func kindParam(w http.ResponseWriter, r *http.Request) (leave.Kind, bool) {
	kind := leave.Kind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		api.Fail(w, http.StatusNotFound, "not_found", "unknown leave kind", requestctx.GetRequestID(r.Context()))
		return "", false
	}
	return kind, true
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload leave.Input
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	report, err := h.Service.Apply(r.Context(), user, payload)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Created(w, report, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	var status *int
	if raw := r.URL.Query().Get("status"); raw != "" {
		value, known := statusNames[raw]
		if !known {
			api.Fail(w, http.StatusBadRequest, "invalid_status", "status must be pending, approved or rejected", requestctx.GetRequestID(r.Context()))
			return
		}
		status = &value
	}
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	items, total, err := h.Service.List(r.Context(), user, kind, status, page.Limit, page.Offset)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, shared.NewPage(items, total, page), requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	report, err := h.Service.Get(r.Context(), user, kind, chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, report, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleReview(approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := kindParam(w, r)
		if !ok {
			return
		}
		user, _ := middleware.GetUser(r.Context())
		id := chi.URLParam(r, "id")
		var (
			report leave.Report
			err    error
			action = "leave.reject"
		)
		if approve {
			action = "leave.approve"
			report, err = h.Service.Approve(r.Context(), user, kind, id)
		} else {
			report, err = h.Service.Reject(r.Context(), user, kind, id)
		}
		if err != nil {
			shared.WriteError(w, r, err)
			return
		}
		shared.RecordAudit(r, h.Audit, action, "leave_"+string(kind), id, nil, map[string]any{"status": report.StatusLabel()})
		api.Success(w, report, requestctx.GetRequestID(r.Context()))
	}
}
