package orghandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/org"
	"hrdesk/internal/requestctx"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Service interface {
	ListDivisions(ctx context.Context) ([]org.Division, error)
	GetDivision(ctx context.Context, id string) (org.Division, error)
	CreateDivision(ctx context.Context, in org.DivisionInput) (org.Division, error)
	UpdateDivision(ctx context.Context, id string, in org.DivisionInput) (org.Division, error)
	DeleteDivision(ctx context.Context, id string) error
	ListDepartments(ctx context.Context, divisionID string) ([]org.Department, error)
	GetDepartment(ctx context.Context, id string) (org.Department, error)
	CreateDepartment(ctx context.Context, in org.DepartmentInput) (org.Department, error)
	UpdateDepartment(ctx context.Context, id string, in org.DepartmentInput) (org.Department, error)
	DeleteDepartment(ctx context.Context, id string) error
}

type Handler struct {
	Service Service
	Audit   shared.Auditor
}

func NewHandler(service Service, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	adminOnly := middleware.RequireRole(auth.RoleAdmin)
	r.Route("/divisions", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleListDivisions)
		r.Get("/{id}", h.handleGetDivision)
		r.With(adminOnly).Post("/", h.handleCreateDivision)
		r.With(adminOnly).Put("/{id}", h.handleUpdateDivision)
		r.With(adminOnly).Delete("/{id}", h.handleDeleteDivision)
	})
	r.Route("/departments", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleListDepartments)
		r.Get("/{id}", h.handleGetDepartment)
		r.With(adminOnly).Post("/", h.handleCreateDepartment)
		r.With(adminOnly).Put("/{id}", h.handleUpdateDepartment)
		r.With(adminOnly).Delete("/{id}", h.handleDeleteDepartment)
	})
}

func (h *Handler) handleListDivisions(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListDivisions(r.Context())
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	if items == nil {
		items = []org.Division{}
	}
	api.Success(w, items, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleGetDivision(w http.ResponseWriter, r *http.Request) {
	item, err := h.Service.GetDivision(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, item, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateDivision(w http.ResponseWriter, r *http.Request) {
	var payload org.DivisionInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	created, err := h.Service.CreateDivision(r.Context(), payload)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "division.create", "division", created.ID, nil, created)
	api.Created(w, created, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateDivision(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload org.DivisionInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	before, err := h.Service.GetDivision(r.Context(), id)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	updated, err := h.Service.UpdateDivision(r.Context(), id, payload)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "division.update", "division", id, before, updated)
	api.Success(w, updated, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteDivision(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.DeleteDivision(r.Context(), id); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "division.delete", "division", id, nil, nil)
	api.Success(w, map[string]string{"status": "deleted"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListDepartments(r.Context(), r.URL.Query().Get("division"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	if items == nil {
		items = []org.Department{}
	}
	api.Success(w, items, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleGetDepartment(w http.ResponseWriter, r *http.Request) {
	item, err := h.Service.GetDepartment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, item, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var payload org.DepartmentInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	created, err := h.Service.CreateDepartment(r.Context(), payload)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "department.create", "department", created.ID, nil, created)
	api.Created(w, created, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload org.DepartmentInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	before, err := h.Service.GetDepartment(r.Context(), id)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	updated, err := h.Service.UpdateDepartment(r.Context(), id, payload)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "department.update", "department", id, before, updated)
	api.Success(w, updated, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.DeleteDepartment(r.Context(), id); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "department.delete", "department", id, nil, nil)
	api.Success(w, map[string]string{"status": "deleted"}, requestctx.GetRequestID(r.Context()))
}
