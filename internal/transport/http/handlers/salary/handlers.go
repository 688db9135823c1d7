package salaryhandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/salary"
	"hrdesk/internal/requestctx"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Service interface {
	Edit(ctx context.Context, actor auth.UserContext, in salary.Input) (salary.Salary, error)
	ForEmployee(ctx context.Context, employeeID string) (salary.Salary, error)
	Mine(ctx context.Context, user auth.UserContext) (salary.Salary, error)
	List(ctx context.Context, departmentID string, limit, offset int) ([]salary.Salary, int, error)
	Slip(ctx context.Context, user auth.UserContext, employeeID string) ([]byte, salary.Salary, error)
}

type Handler struct {
	Service Service
	Audit   shared.Auditor
}

func NewHandler(service Service, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/salaries", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/", h.handleList)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/", h.handleEdit)
		r.With(middleware.RequireRole(auth.RoleEmployee)).Get("/me", h.handleMine)
		r.With(middleware.RequireRole(auth.RoleEmployee)).Get("/me/slip", h.handleSlip)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/{employeeID}/slip", h.handleSlip)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	items, total, err := h.Service.List(r.Context(), r.URL.Query().Get("department"), page.Limit, page.Offset)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, shared.NewPage(items, total, page), requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload salary.Input
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	saved, err := h.Service.Edit(r.Context(), user, payload)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "salary.edit", "employee_salary", saved.EmployeeID, nil,
		map[string]float64{"base": saved.Base, "ctc": saved.CTC})
	api.Success(w, saved, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	item, err := h.Service.Mine(r.Context(), user)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, item, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.Service.ForEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, item, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleSlip(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	pdf, item, err := h.Service.Slip(r.Context(), user, chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Attachment(w, "application/pdf", "salary-slip-"+item.StaffID+".pdf", pdf)
}
