package peoplehandler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/form"
	"hrdesk/internal/domain/people"
	"hrdesk/internal/platform/storage"
	"hrdesk/internal/requestctx"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

const invalidImageReason = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

type Service interface {
	CreateAdmin(ctx context.Context, in people.UserInput) (people.Admin, error)
	GetAdmin(ctx context.Context, id string) (people.Admin, error)
	ListAdmins(ctx context.Context, limit, offset int) ([]people.Admin, int, error)
	UpdateAdmin(ctx context.Context, id string, in people.UserInput) (people.Admin, error)
	DeleteAdmin(ctx context.Context, actor auth.UserContext, id string) error

	CreateStaff(ctx context.Context, kind people.Kind, in people.StaffInput) (people.Staff, error)
	UpdateStaff(ctx context.Context, kind people.Kind, id string, in people.StaffInput) (people.Staff, error)
	GetStaff(ctx context.Context, viewer auth.UserContext, kind people.Kind, id string) (people.Staff, error)
	ListStaff(ctx context.Context, viewer auth.UserContext, kind people.Kind, filter people.Filter, limit, offset int) ([]people.Staff, int, error)
	DeleteStaff(ctx context.Context, kind people.Kind, id string) error
	Badge(ctx context.Context, viewer auth.UserContext, kind people.Kind, id string) ([]byte, error)

	Me(ctx context.Context, user auth.UserContext) (people.Profile, error)
	UpdateMe(ctx context.Context, user auth.UserContext, in people.UserInput) (people.Profile, error)
	SetProfilePic(ctx context.Context, userID string, r io.Reader) (people.Account, error)
}

type MediaOpener interface {
	Open(rel string) (*os.File, error)
}

type Handler struct {
	Service        Service
	Media          MediaOpener
	Audit          shared.Auditor
	MaxUploadBytes int64
}

func NewHandler(service Service, media MediaOpener, auditor shared.Auditor, maxUpload int64) *Handler {
	return &Handler{Service: service, Media: media, Audit: auditor, MaxUploadBytes: maxUpload}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admins", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/", h.handleListAdmins)
		r.Post("/", h.handleCreateAdmin)
		r.Get("/{id}", h.handleGetAdmin)
		r.Put("/{id}", h.handleUpdateAdmin)
		r.Delete("/{id}", h.handleDeleteAdmin)
	})
	r.Route("/managers", h.staffRoutes(people.KindManager))
	r.Route("/employees", h.staffRoutes(people.KindEmployee))
	r.Route("/profile", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleMe)
		r.Put("/", h.handleUpdateMe)
		r.Post("/profile-pic", h.handleProfilePic)
	})
	r.With(middleware.RequireAuth).Get("/media/*", h.handleMedia)
}

func (h *Handler) staffRoutes(kind people.Kind) func(chi.Router) {
	return func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleManager)).Get("/", h.handleListStaff(kind))
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/", h.handleCreateStaff(kind))
		r.Get("/{id}", h.handleGetStaff(kind))
		r.Get("/{id}/badge", h.handleBadge(kind))
		r.With(middleware.RequireRole(auth.RoleAdmin)).Put("/{id}", h.handleUpdateStaff(kind))
		r.With(middleware.RequireRole(auth.RoleAdmin)).Delete("/{id}", h.handleDeleteStaff(kind))
	}
}

func (h *Handler) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	items, total, err := h.Service.ListAdmins(r.Context(), page.Limit, page.Offset)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, shared.NewPage(items, total, page), requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var payload people.UserInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	created, err := h.Service.CreateAdmin(r.Context(), payload)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "admin.create", "admin", created.ID, nil, created.User)
	api.Created(w, created, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleGetAdmin(w http.ResponseWriter, r *http.Request) {
	item, err := h.Service.GetAdmin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, item, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateAdmin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload people.UserInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	updated, err := h.Service.UpdateAdmin(r.Context(), id, payload)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "admin.update", "admin", id, nil, updated.User)
	api.Success(w, updated, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, _ := middleware.GetUser(r.Context())
	if err := h.Service.DeleteAdmin(r.Context(), user, id); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.RecordAudit(r, h.Audit, "admin.delete", "admin", id, nil, nil)
	api.Success(w, map[string]string{"status": "deleted"}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleListStaff(kind people.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.GetUser(r.Context())
		page := shared.ParsePagination(r, 50, 200)
		filter := people.Filter{
			DepartmentID: r.URL.Query().Get("department"),
			TeamLeadID:   r.URL.Query().Get("teamLead"),
		}
		items, total, err := h.Service.ListStaff(r.Context(), user, kind, filter, page.Limit, page.Offset)
		if err != nil {
			shared.WriteError(w, r, err)
			return
		}
		api.Success(w, shared.NewPage(items, total, page), requestctx.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleCreateStaff(kind people.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload people.StaffInput
		if err := shared.DecodeJSON(r, &payload); err != nil {
			shared.WriteError(w, r, err)
			return
		}
		created, err := h.Service.CreateStaff(r.Context(), kind, payload)
		if err != nil {
			shared.WriteError(w, r, err)
			return
		}
		shared.RecordAudit(r, h.Audit, string(kind)+".create", string(kind), created.ID, nil, map[string]string{"staffId": created.StaffID, "email": created.User.Email})
		api.Created(w, created, requestctx.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleGetStaff(kind people.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.GetUser(r.Context())
		item, err := h.Service.GetStaff(r.Context(), user, kind, chi.URLParam(r, "id"))
		if err != nil {
			shared.WriteError(w, r, err)
			return
		}
		api.Success(w, item, requestctx.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleUpdateStaff(kind people.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var payload people.StaffInput
		if err := shared.DecodeJSON(r, &payload); err != nil {
			shared.WriteError(w, r, err)
			return
		}
		updated, err := h.Service.UpdateStaff(r.Context(), kind, id, payload)
		if err != nil {
			shared.WriteError(w, r, err)
			return
		}
		shared.RecordAudit(r, h.Audit, string(kind)+".update", string(kind), id, nil, map[string]string{"staffId": updated.StaffID, "email": updated.User.Email})
		api.Success(w, updated, requestctx.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleDeleteStaff(kind people.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := h.Service.DeleteStaff(r.Context(), kind, id); err != nil {
			shared.WriteError(w, r, err)
			return
		}
		shared.RecordAudit(r, h.Audit, string(kind)+".delete", string(kind), id, nil, nil)
		api.Success(w, map[string]string{"status": "deleted"}, requestctx.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleBadge(kind people.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.GetUser(r.Context())
		id := chi.URLParam(r, "id")
		png, err := h.Service.Badge(r.Context(), user, kind, id)
		if err != nil {
			shared.WriteError(w, r, err)
			return
		}
		api.Attachment(w, "image/png", "", png)
	}
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	profile, err := h.Service.Me(r.Context(), user)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, profile, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload people.UserInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	profile, err := h.Service.UpdateMe(r.Context(), user, payload)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, profile, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) handleProfilePic(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		shared.WriteError(w, r, uploadError(err))
		return
	}
	file, _, err := r.FormFile("profile_pic")
	if err != nil {
		errs := form.New()
		errs.Add("profile_pic", "No file was submitted.")
		shared.WriteError(w, r, errs)
		return
	}
	defer file.Close()

	account, err := h.Service.SetProfilePic(r.Context(), user.UserID, file)
	if errors.Is(err, storage.ErrUnsupportedType) {
		errs := form.New()
		errs.Add("profile_pic", invalidImageReason)
		shared.WriteError(w, r, errs)
		return
	}
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, account, requestctx.GetRequestID(r.Context()))
}

func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}
	return shared.ErrInvalidPayload
}

func (h *Handler) handleMedia(w http.ResponseWriter, r *http.Request) {
	if h.Media == nil {
		http.NotFound(w, r)
		return
	}
	file, err := h.Media.Open(chi.URLParam(r, "*"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "file not found", requestctx.GetRequestID(r.Context()))
		return
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		api.Fail(w, http.StatusNotFound, "not_found", "file not found", requestctx.GetRequestID(r.Context()))
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}
