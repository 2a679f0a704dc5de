package restapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"todo/internal/backend/restapi"
	"todo/internal/config"
	"todo/internal/identity"
	"todo/internal/service"
	"todo/internal/testutil"
)

// setup returns a client signed in as ada against a fresh TodoServer.
func setup(t *testing.T) (*restapi.Client, *testutil.TodoServer, *identity.Client) {
	t.Helper()
	srv := testutil.NewTodoServer()
	t.Cleanup(srv.Close)

	ident := testutil.SignedInClient(testutil.NewFakeProvider(), "ada@example.com")
	srv.Authorize(ident.Session().IDToken)

	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	cfg.APIURL = srv.URL

	return restapi.New(cfg, ident.TokenSource(context.Background()), zaptest.NewLogger(t)), srv, ident
}

func TestCreateThenList(t *testing.T) {
	c, srv, _ := setup(t)
	ctx := context.Background()
	srv.NextID = "abc123"

	created, err := c.CreateTask(ctx, "Buy milk", "2%")
	require.NoError(t, err)
	assert.Equal(t, service.Task{ID: "abc123", Title: "Buy milk", Description: "2%"}, created)

	tasks, err := c.ListTasks(ctx)
	require.NoError(t, err)
	count := 0
	for _, task := range tasks {
		if task.ID == "abc123" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestListPreservesServerOrder(t *testing.T) {
	c, srv, _ := setup(t)
	srv.Seed("b", "second", "x")
	srv.Seed("a", "first", "y")

	tasks, err := c.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "b", tasks[0].ID)
	assert.Equal(t, "a", tasks[1].ID)
}

func TestUpdate(t *testing.T) {
	c, srv, _ := setup(t)
	srv.Seed("t1", "old", "old desc")

	updated, err := c.UpdateTask(context.Background(), "t1", "new", "new desc")
	require.NoError(t, err)
	assert.Equal(t, service.Task{ID: "t1", Title: "new", Description: "new desc"}, updated)
}

func TestUpdate_MissingIsGenericFailure(t *testing.T) {
	c, _, _ := setup(t)

	_, err := c.UpdateTask(context.Background(), "ghost", "t", "d")
	assert.ErrorIs(t, err, service.ErrRequestFailed)
	assert.NotErrorIs(t, err, service.ErrUnauthorized)
}

func TestDelete(t *testing.T) {
	c, srv, _ := setup(t)
	srv.Seed("t1", "a", "b")

	require.NoError(t, c.DeleteTask(context.Background(), "t1"))
	assert.Equal(t, 0, srv.Count())

	srv.Seed("t2", "a", "b")
	srv.FailDelete = true
	assert.ErrorIs(t, c.DeleteTask(context.Background(), "t2"), service.ErrRequestFailed)
}

func TestUnauthorized(t *testing.T) {
	c, _, ident := setup(t)

	ident.SignOut()
	_, err := c.ListTasks(context.Background())
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestUnauthorized_ServerRejectsToken(t *testing.T) {
	srv := testutil.NewTodoServer()
	defer srv.Close()
	ident := testutil.SignedInClient(testutil.NewFakeProvider(), "ada@example.com")

	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	cfg.APIURL = srv.URL
	c := restapi.New(cfg, ident.TokenSource(context.Background()), nil)

	_, err = c.ListTasks(context.Background())
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestUpdate_EmptyBodyUsesAcceptedValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/todos/t1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := restapi.NewWithHTTPClient(srv.URL, srv.Client(), time.Second, nil)
	updated, err := c.UpdateTask(context.Background(), "t1", "title", "desc")
	require.NoError(t, err)
	assert.Equal(t, service.Task{ID: "t1", Title: "title", Description: "desc"}, updated)
}

func TestCreate_AcceptsIDAlias(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"abc123","title":"Buy milk","description":"2%"}`))
	}))
	defer srv.Close()

	c := restapi.NewWithHTTPClient(srv.URL, srv.Client(), time.Second, nil)
	created, err := c.CreateTask(context.Background(), "Buy milk", "2%")
	require.NoError(t, err)
	assert.Equal(t, "abc123", created.ID)
}

func TestCreate_ResponseWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"title":"x","description":"y"}`))
	}))
	defer srv.Close()

	c := restapi.NewWithHTTPClient(srv.URL, srv.Client(), time.Second, nil)
	_, err := c.CreateTask(context.Background(), "x", "y")
	assert.ErrorIs(t, err, service.ErrRequestFailed)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := restapi.NewWithHTTPClient(srv.URL, srv.Client(), 20*time.Millisecond, nil)
	_, err := c.ListTasks(context.Background())
	assert.ErrorIs(t, err, service.ErrRequestFailed)
	assert.ErrorContains(t, err, "timed out")
}
