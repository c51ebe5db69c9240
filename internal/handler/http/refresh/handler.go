// Package refresh exposes the crawl refresh over HTTP. A refresh is started
// with POST and then followed by polling the status with GET.
package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"einvoice-news/internal/handler/http/auth"
	"einvoice-news/internal/handler/http/respond"
	"einvoice-news/internal/observability/logging"
	"einvoice-news/internal/repository"
	refreshuc "einvoice-news/internal/usecase/refresh"
)

// Orchestrator is the refresh use case as the handlers use it.
type Orchestrator interface {
	Start(ctx context.Context, store repository.StorageRepository, prompt refreshuc.Prompt) (bool, error)
	Status() refreshuc.Status
}

// Request is the optional body of POST /api/refresh. Credential is only
// consulted when no token is stored for the profile yet.
type Request struct {
	Credential string `json:"credential,omitempty"`
}

// Handler serves the refresh endpoints.
type Handler struct {
	Orch   Orchestrator
	Logger *slog.Logger
}

func (h Handler) logger(r *http.Request) *slog.Logger {
	l := h.Logger
	if l == nil {
		l = slog.Default()
	}
	return logging.WithRequestID(r.Context(), l)
}

// Start triggers the crawl workflow.
// @Summary      Start a refresh
// @Description  Dispatches the crawl workflow, then polls it and reloads the dataset in the background. Returns 202 when a run was started and 200 when one was already in flight.
// @Tags         refresh
// @Accept       json
// @Produce      json
// @Param        request  body      Request  false  "Workflow token, needed only the first time"
// @Success      200      {object}  refreshuc.Status  "A refresh is already running"
// @Success      202      {object}  refreshuc.Status  "Refresh started"
// @Failure      400      {object}  respond.ErrorBody  "Credential required"
// @Failure      401      {object}  respond.ErrorBody  "Login required"
// @Router       /api/refresh [post]
func (h Handler) Start(w http.ResponseWriter, r *http.Request) {
	store, ok := auth.StoreFromContext(r.Context())
	if !ok {
		respond.SafeError(w, http.StatusInternalServerError, errors.New("no client profile on request"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	prompt := refreshuc.PromptFunc(func(context.Context) (string, error) {
		return strings.TrimSpace(req.Credential), nil
	})

	// The run outlives the request but keeps its request id and trace.
	started, err := h.Orch.Start(context.WithoutCancel(r.Context()), store, prompt)
	switch {
	case errors.Is(err, refreshuc.ErrCredentialDeclined):
		respond.JSON(w, http.StatusBadRequest, respond.ErrorBody{Error: "workflow credential required"})
		return
	case err != nil:
		h.logger(r).Error("refresh start failed", slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	code := http.StatusOK
	if started {
		code = http.StatusAccepted
	}
	respond.JSON(w, code, h.Orch.Status())
}

// Status reports the current or last refresh.
// @Summary      Refresh status
// @Tags         refresh
// @Produce      json
// @Success      200  {object}  refreshuc.Status
// @Failure      401  {object}  respond.ErrorBody  "Login required"
// @Router       /api/refresh [get]
func (h Handler) Status(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.Orch.Status())
}

// Forget removes the stored workflow credential of the profile.
// @Summary      Forget the workflow credential
// @Tags         refresh
// @Success      204
// @Failure      401  {object}  respond.ErrorBody  "Login required"
// @Router       /api/refresh/credential [delete]
func (h Handler) Forget(w http.ResponseWriter, r *http.Request) {
	store, ok := auth.StoreFromContext(r.Context())
	if !ok {
		respond.SafeError(w, http.StatusInternalServerError, errors.New("no client profile on request"))
		return
	}
	if err := store.Delete(r.Context(), repository.KeyGitHubToken); err != nil {
		h.logger(r).Error("forget credential failed", slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
