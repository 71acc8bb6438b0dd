package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"todolists/internal/todo/models"
	id "todolists/pkg/domain"
	dErrors "todolists/pkg/domain-errors"
	"todolists/pkg/platform/httputil"
	"todolists/pkg/requestcontext"
)

// Service defines the list operations the handler exposes.
type Service interface {
	ListSummaries(ctx context.Context) (models.SummaryIterator, error)
	CreateList(ctx context.Context, name string) (*models.List, error)
	GetList(ctx context.Context, listID id.ListID) (*models.List, error)
	ListItems(ctx context.Context, listID id.ListID) ([]models.Item, error)
	DeleteList(ctx context.Context, listID id.ListID) (bool, error)
	CreateItem(ctx context.Context, listID id.ListID, label string) (*models.List, models.Item, error)
	SetCheckedState(ctx context.Context, listID id.ListID, itemID id.ItemID, checked bool) (*models.List, error)
	DeleteItem(ctx context.Context, listID id.ListID, itemID id.ItemID) (*models.List, error)
}

// Handler serves the to-do list API.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the /api routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/dummy", h.handleDummy)
		r.Route("/lists", func(r chi.Router) {
			r.Get("/", h.handleListSummaries)
			r.Post("/", h.handleCreateList)
			r.Route("/{listID}", func(r chi.Router) {
				r.Get("/", h.handleGetList)
				r.Delete("/", h.handleDeleteList)
				r.Get("/items", h.handleListItems)
				r.Post("/items", h.handleCreateItem)
				r.Delete("/items/{itemID}", h.handleDeleteItem)
				r.Put("/checked_state", h.handleSetCheckedState)
			})
		})
	})
}

// handleListSummaries streams the summaries as a JSON array, one element at
// a time. Failures before the first element produce an error response; a
// failure mid-stream truncates the body and is logged.
func (h *Handler) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	it, err := h.service.ListSummaries(ctx)
	if err != nil {
		h.writeError(ctx, w, "failed to list summaries", err)
		return
	}
	defer func() {
		if err := it.Close(ctx); err != nil {
			h.logger.WarnContext(ctx, "failed to close summary iterator",
				"request_id", requestID,
				"error", err.Error(),
			)
		}
	}()

	more := it.Next(ctx)
	if !more {
		if err := it.Err(); err != nil {
			h.writeError(ctx, w, "failed to list summaries", err)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "[")
	for n := 0; more; n++ {
		if n > 0 {
			_, _ = io.WriteString(w, ",")
		}
		b, err := json.Marshal(toSummaryResponse(it.Summary()))
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to encode summary", "request_id", requestID, "error", err.Error())
			return
		}
		_, _ = w.Write(b)
		more = it.Next(ctx)
	}
	if err := it.Err(); err != nil {
		h.logger.ErrorContext(ctx, "summary stream aborted",
			"request_id", requestID,
			"error", err.Error(),
		)
		return
	}
	_, _ = io.WriteString(w, "]")
}

func (h *Handler) handleCreateList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateListRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	list, err := h.service.CreateList(ctx, req.Name)
	if err != nil {
		h.writeError(ctx, w, "failed to create list", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, CreateListResponse{ID: list.ID.String(), Name: list.Name})
}

func (h *Handler) handleGetList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listID, ok := h.listIDParam(w, r)
	if !ok {
		return
	}

	list, err := h.service.GetList(ctx, listID)
	if err != nil {
		h.writeError(ctx, w, "failed to get list", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(list))
}

func (h *Handler) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listID, ok := h.listIDParam(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.DeleteList(ctx, listID)
	if err != nil {
		h.writeError(ctx, w, "failed to delete list", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, deleted)
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listID, ok := h.listIDParam(w, r)
	if !ok {
		return
	}

	items, err := h.service.ListItems(ctx, listID)
	if err != nil {
		h.writeError(ctx, w, "failed to list items", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toItemResponses(items))
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listID, ok := h.listIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateItemRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	_, item, err := h.service.CreateItem(ctx, listID, req.Label)
	if err != nil {
		h.writeError(ctx, w, "failed to create item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, CreateItemResponse{ID: item.ID.String(), Label: item.Label})
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listID, ok := h.listIDParam(w, r)
	if !ok {
		return
	}
	itemID, err := id.ParseItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeError(ctx, w, "invalid item id", err)
		return
	}

	if _, err := h.service.DeleteItem(ctx, listID, itemID); err != nil {
		h.writeError(ctx, w, "failed to delete item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, true)
}

func (h *Handler) handleSetCheckedState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listID, ok := h.listIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetCheckedStateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	itemID, err := req.ResolveItemID(r.URL.Query().Get("item_id"))
	if err != nil {
		h.writeError(ctx, w, "invalid item id", err)
		return
	}

	list, err := h.service.SetCheckedState(ctx, listID, itemID, *req.CheckedState)
	if err != nil {
		h.writeError(ctx, w, "failed to set checked state", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(list))
}

// handleDummy returns a fresh ObjectID and the request time. It is a smoke
// endpoint for clients checking the API is wired.
func (h *Handler) handleDummy(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, DummyResponse{
		ID:   primitive.NewObjectID().Hex(),
		When: requestcontext.Now(r.Context()),
	})
}

func (h *Handler) listIDParam(w http.ResponseWriter, r *http.Request) (id.ListID, bool) {
	listID, err := id.ParseListID(chi.URLParam(r, "listID"))
	if err != nil {
		h.writeError(r.Context(), w, "invalid list id", err)
		return id.ListID{}, false
	}
	return listID, true
}

// writeError logs server-side failures and writes the error envelope.
// Client errors, including not found, are expected and only logged at debug.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	}
	if dErrors.ToHTTPStatus(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.DebugContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
