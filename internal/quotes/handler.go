package quotes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/elvenwooddev-web/designquote/internal/auth"
	"github.com/elvenwooddev-web/designquote/internal/platform/httpx"
	"github.com/elvenwooddev-web/designquote/internal/quotes/workflow"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/preview", h.Preview)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/submit", h.transition(workflow.EventSubmit, false))
	r.Post("/{id}/approve", h.transition(workflow.EventApprove, true))
	r.Post("/{id}/reject", h.transition(workflow.EventReject, true))
	r.Post("/{id}/accept", h.transition(workflow.EventAccept, false))
	r.Post("/{id}/export", h.Export)
	r.Get("/{id}/pdf", h.PDF)
	r.Get("/{id}/revisions", h.Revisions)
}

type listResponse struct {
	Items []QuoteWithClient `json:"items"`
	Total int               `json:"total"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req, err := parseListRequest(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	quotes, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list quotes failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if quotes == nil {
		quotes = []QuoteWithClient{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: quotes, Total: total})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quote ID")
		return
	}
	quote, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var req CreateQuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	quote, err := h.service.Create(r.Context(), req, actor)
	if err != nil {
		h.logger.Error("create quote failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, quote)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quote ID")
		return
	}
	var req UpdateQuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	quote, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quote ID")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.Preview(req))
}

// transition builds a handler for one workflow action. Approval actions
// additionally require the approver role.
func (h *Handler) transition(event workflow.Event, needsApprover bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		if needsApprover && !canApprove(r) {
			httpx.RespondError(w, httpx.ErrForbidden)
			return
		}
		id, err := parseID(r)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quote ID")
			return
		}
		req, err := h.decodeTransition(r)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		quote, err := h.service.Transition(r.Context(), id, event, actor, req.Notes)
		if err != nil {
			h.respondWorkflowError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, quote)
	}
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quote ID")
		return
	}
	req, err := h.decodeTransition(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	quote, pdf, err := h.service.Export(r.Context(), id, actor, req.Notes)
	if err != nil {
		h.respondWorkflowError(w, err)
		return
	}
	httpx.PDF(w, pdfFilename(quote), pdf)
}

func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quote ID")
		return
	}
	quote, pdf, err := h.service.RenderPDF(r.Context(), id)
	if err != nil {
		h.respondWorkflowError(w, err)
		return
	}
	httpx.PDF(w, pdfFilename(quote), pdf)
}

func (h *Handler) Revisions(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quote ID")
		return
	}
	revisions, err := h.service.ListRevisions(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if revisions == nil {
		revisions = []Revision{}
	}
	httpx.JSON(w, http.StatusOK, revisions)
}

// decodeTransition tolerates an empty body; notes are optional.
func (h *Handler) decodeTransition(r *http.Request) (TransitionRequest, error) {
	var req TransitionRequest
	if r.ContentLength == 0 {
		return req, nil
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return req, errors.New("invalid JSON body")
	}
	if err := h.validator.Struct(req); err != nil {
		return req, err
	}
	return req, nil
}

func (h *Handler) respondWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflow.ErrInvalidTransition), errors.Is(err, workflow.ErrNotApproved):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("quote operation failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func actorFrom(r *http.Request) (workflow.Actor, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return workflow.Actor{}, false
	}
	return workflow.Actor{ID: user.ID, Email: user.Email, Name: user.Name}, true
}

func canApprove(r *http.Request) bool {
	user, ok := auth.UserFromContext(r.Context())
	return ok && user.CanApprove()
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func pdfFilename(q *Quote) string {
	return fmt.Sprintf("%s-v%d.pdf", q.QuoteNumber, q.Version)
}

func parseListRequest(r *http.Request) (ListQuotesRequest, error) {
	var req ListQuotesRequest
	q := r.URL.Query()

	if v := q.Get("client_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return req, errors.New("invalid client_id")
		}
		req.ClientID = &id
	}
	if v := q.Get("status"); v != "" {
		status := workflow.Status(v)
		req.Status = &status
	}
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return req, errors.New("invalid date_from, want YYYY-MM-DD")
		}
		req.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return req, errors.New("invalid date_to, want YYYY-MM-DD")
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		req.DateTo = &end
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, errors.New("invalid limit")
		}
		req.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, errors.New("invalid offset")
		}
		req.Offset = n
	}
	return req, nil
}
