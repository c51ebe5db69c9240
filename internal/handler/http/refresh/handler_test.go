package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"einvoice-news/internal/handler/http/auth"
	"einvoice-news/internal/infra/adapter/persistence/memory"
	"einvoice-news/internal/repository"
	refreshuc "einvoice-news/internal/usecase/refresh"
)

type fakeOrch struct {
	started    bool
	err        error
	credential string
	ctxErr     error
	status     refreshuc.Status
}

func (f *fakeOrch) Start(ctx context.Context, _ repository.StorageRepository, prompt refreshuc.Prompt) (bool, error) {
	f.ctxErr = ctx.Err()
	if prompt != nil {
		f.credential, _ = prompt.Credential(ctx)
	}
	return f.started, f.err
}

func (f *fakeOrch) Status() refreshuc.Status { return f.status }

func serve(t *testing.T, orch Orchestrator, store repository.StorageRepository, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	Register(mux, Handler{Orch: orch}, func(h http.Handler) http.Handler { return h })

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if store != nil {
		req = req.WithContext(auth.WithStore(req.Context(), store))
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestStart_Accepted(t *testing.T) {
	orch := &fakeOrch{started: true, status: refreshuc.Status{State: refreshuc.StateTriggering, Refreshing: true}}
	store := memory.NewStore().Namespace("p1")

	rr := serve(t, orch, store, http.MethodPost, "/api/refresh", `{"credential":"  ghp_abc "}`)
	require.Equal(t, http.StatusAccepted, rr.Code)

	var st refreshuc.Status
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&st))
	assert.Equal(t, refreshuc.StateTriggering, st.State)
	assert.True(t, st.Refreshing)
	assert.Equal(t, "ghp_abc", orch.credential)
	assert.NoError(t, orch.ctxErr)
}

func TestStart_AlreadyRunning(t *testing.T) {
	orch := &fakeOrch{started: false, status: refreshuc.Status{State: refreshuc.StatePolling, Refreshing: true}}
	rr := serve(t, orch, memory.NewStore().Namespace("p1"), http.MethodPost, "/api/refresh", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"state":"polling"`)
}

func TestStart_CredentialDeclined(t *testing.T) {
	orch := &fakeOrch{err: &refreshuc.CredentialError{Err: refreshuc.ErrCredentialDeclined}}
	rr := serve(t, orch, memory.NewStore().Namespace("p1"), http.MethodPost, "/api/refresh", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"workflow credential required"}`, rr.Body.String())
	assert.Empty(t, orch.credential)
}

func TestStart_Errors(t *testing.T) {
	store := memory.NewStore().Namespace("p1")

	rr := serve(t, &fakeOrch{}, store, http.MethodPost, "/api/refresh", `{"credential":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(t, &fakeOrch{err: errors.New("read credential: disk on fire")}, store, http.MethodPost, "/api/refresh", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "disk on fire")

	rr = serve(t, &fakeOrch{}, nil, http.MethodPost, "/api/refresh", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestStatus(t *testing.T) {
	delta := 3
	orch := &fakeOrch{status: refreshuc.Status{State: refreshuc.StateDone, Message: "3 new articles", Delta: &delta, MaxAttempts: 60}}

	rr := serve(t, orch, nil, http.MethodGet, "/api/refresh", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var st refreshuc.Status
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&st))
	assert.Equal(t, refreshuc.StateDone, st.State)
	require.NotNil(t, st.Delta)
	assert.Equal(t, 3, *st.Delta)
}

func TestForget(t *testing.T) {
	store := memory.NewStore().Namespace("p1")
	require.NoError(t, store.Set(context.Background(), repository.KeyGitHubToken, "ghp_abc"))

	rr := serve(t, &fakeOrch{}, store, http.MethodDelete, "/api/refresh/credential", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	_, ok, err := store.Get(context.Background(), repository.KeyGitHubToken)
	require.NoError(t, err)
	assert.False(t, ok)
}
