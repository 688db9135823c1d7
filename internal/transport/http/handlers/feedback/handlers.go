package feedbackhandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/feedback"
	"hrdesk/internal/requestctx"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Service interface {
	Submit(ctx context.Context, user auth.UserContext, in feedback.Input) (feedback.Feedback, error)
	List(ctx context.Context, user auth.UserContext, kind feedback.Kind, limit, offset int) ([]feedback.Feedback, int, error)
	Reply(ctx context.Context, kind feedback.Kind, id string, in feedback.ReplyInput) (feedback.Feedback, error)
}

type Handler struct {
	Service Service
	Audit   shared.Auditor
}

func NewHandler(service Service, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/feedback", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireRole(auth.RoleEmployee, auth.RoleManager)).Post("/", h.handleSubmit)
		r.Get("/{kind}", h.handleList)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/{kind}/{id}/reply", h.handleReply)
	})
}

func kindParam(w http.ResponseWriter, r *http.Request) (feedback.Kind, bool) {
	switch kind := feedback.Kind(chi.URLParam(r, "kind")); kind {
	case feedback.KindEmployee, feedback.KindManager:
		return kind, true
	default:
		api.Fail(w, http.StatusNotFound, "not_found", "unknown feedback kind", requestctx.GetRequestID(r.Context()))
		return "", false
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload feedback.Input
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	item, err := h.Service.Submit(r.Context(), user, payload)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Created(w, item, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	items, total, err := h.Service.List(r.Context(), user, kind, page.Limit, page.Offset)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, shared.NewPage(items, total, page), requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleReply(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	var payload feedback.ReplyInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	item, err := h.Service.Reply(r.Context(), kind, id, payload)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "feedback.reply", "feedback_"+string(kind), id, nil, map[string]string{"reply": item.Reply})
	api.Success(w, item, requestctx.GetRequestID(r.Context()))
}
