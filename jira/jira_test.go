package jira

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/jiralink/rest"
)

// fakeJira serves a small in-memory Jira and counts calls per route
type fakeJira struct {
	mu       sync.Mutex
	calls    map[string]int
	versions map[string][]Version
	failNext atomic.Bool
}

func newFakeJira() *fakeJira {
	return &fakeJira{
		calls: make(map[string]int),
		versions: map[string][]Version{
			"TST": {
				{ID: "100", Name: "1.0.0", Released: true},
				{ID: "101", Name: "1.1.0"},
			},
			"OPS": {
				{ID: "200", Name: "2024.1", Released: true},
			},
		},
	}
}

func (f *fakeJira) count(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

func (f *fakeJira) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	f.mu.Lock()
	f.calls[route]++
	f.mu.Unlock()

	if f.failNext.CompareAndSwap(true, false) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
		return
	}

	switch {
	case route == "GET /rest/api/2/project":
		if r.URL.Query().Get("expand") != "lead,url" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`[
			{"id":"1","key":"TST","name":"Test","lead":{"name":"jdoe","displayName":"Jane Doe"}},
			{"id":"2","key":"OPS","name":"Operations"},
			{"id":"3","key":"WEB","name":"Website"}
		]`))
	case route == "GET /rest/api/2/project/TST":
		w.Write([]byte(`{"id":"1","key":"TST","name":"Test"}`))
	case route == "GET /rest/api/2/project/NOPE":
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errorMessages":["No project could be found with key 'NOPE'."]}`))
	case strings.HasPrefix(route, "GET /rest/api/2/project/") && strings.HasSuffix(route, "/versions"):
		key := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/rest/api/2/project/"), "/versions")
		json.NewEncoder(w).Encode(f.versions[key])
	case route == "GET /rest/api/2/project/TST/version":
		q := r.URL.Query()
		if q.Get("startAt") != "1" || q.Get("maxResults") != "1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"startAt":1,"maxResults":1,"total":2,"isLast":true,"values":[{"id":"101","name":"1.1.0"}]}`))
	case route == "POST /rest/api/2/version":
		data, _ := io.ReadAll(r.Body)
		var info VersionCreateInfo
		json.Unmarshal(data, &info)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Version{ID: "102", Name: info.Name})
	case route == "PUT /rest/api/2/version/101":
		data, _ := io.ReadAll(r.Body)
		w.Write(data)
	case route == "DELETE /rest/api/2/version/101":
		if r.URL.Query().Get("moveFixIssuesTo") != "100" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case route == "GET /rest/api/2/version/100":
		w.Write([]byte(`{"id":"100","name":"1.0.0","released":true,"releaseDate":"2024-03-01"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func setup(t *testing.T) (*Jira, *fakeJira) {
	t.Helper()
	fake := newFakeJira()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := rest.NewClient(server.URL, zerolog.Nop(), rest.WithBasicAuth("admin", "secret"))
	require.NoError(t, err)
	return New(client, zerolog.Nop()), fake
}

func TestProjectService_GetProjects(t *testing.T) {
	ctx := context.Background()
	j, fake := setup(t)

	projects, err := j.Projects.GetProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, "Jane Doe", projects[0].LeadName())
	assert.Equal(t, 1, fake.count("GET /rest/api/2/project"))

	again, err := j.Projects.GetProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, projects, again)
	assert.Equal(t, 1, fake.count("GET /rest/api/2/project"))

	j.Cache().Projects.Clear()

	_, err = j.Projects.GetProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fake.count("GET /rest/api/2/project"))
}

func TestProjectService_GetProjectsFailureLeavesCacheEmpty(t *testing.T) {
	ctx := context.Background()
	j, fake := setup(t)

	fake.failNext.Store(true)
	_, err := j.Projects.GetProjects(ctx)
	assert.True(t, errors.Is(err, rest.ErrRequestFailed))
	assert.Zero(t, j.Cache().Projects.Len())

	projects, err := j.Projects.GetProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 3)
}

func TestProjectService_GetProject(t *testing.T) {
	ctx := context.Background()
	j, fake := setup(t)

	project, err := j.Projects.GetProject(ctx, "TST")
	require.NoError(t, err)
	assert.Equal(t, "Test", project.Name)

	_, err = j.Projects.GetProject(ctx, "TST")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.count("GET /rest/api/2/project/TST"))

	_, err = j.Projects.GetProject(ctx, "NOPE")
	assert.True(t, errors.Is(err, rest.ErrNotFound))

	_, err = j.Projects.GetProject(ctx, "")
	assert.ErrorIs(t, err, ErrMissingProjectKey)
}

func TestVersionService_GetVersions(t *testing.T) {
	ctx := context.Background()
	j, fake := setup(t)

	tst, err := j.Versions.GetVersions(ctx, "TST")
	require.NoError(t, err)
	require.Len(t, tst, 2)
	for _, v := range tst {
		assert.Equal(t, "TST", v.ProjectKey)
	}

	ops, err := j.Versions.GetVersions(ctx, "OPS")
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "OPS", ops[0].ProjectKey)

	cached, err := j.Versions.GetVersions(ctx, "TST")
	require.NoError(t, err)
	assert.Equal(t, tst, cached)

	assert.Equal(t, 1, fake.count("GET /rest/api/2/project/TST/versions"))
	assert.Equal(t, 1, fake.count("GET /rest/api/2/project/OPS/versions"))
	assert.Equal(t, 3, j.Cache().Versions.Len())
}

func TestVersionService_GetPagedVersions(t *testing.T) {
	j, fake := setup(t)

	page, err := j.Versions.GetPagedVersions(context.Background(), "TST", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.True(t, page.IsLast)
	require.Len(t, page.Values, 1)
	assert.Equal(t, "TST", page.Values[0].ProjectKey)
	assert.Equal(t, 1, fake.count("GET /rest/api/2/project/TST/version"))
	assert.Zero(t, j.Cache().Versions.Len())
}

func TestVersionService_Mutations(t *testing.T) {
	ctx := context.Background()
	j, fake := setup(t)

	_, err := j.Versions.GetVersions(ctx, "TST")
	require.NoError(t, err)
	_, err = j.Versions.GetVersions(ctx, "OPS")
	require.NoError(t, err)
	require.Equal(t, 3, j.Cache().Versions.Len())

	t.Run("delete removes one entry", func(t *testing.T) {
		err := j.Versions.DeleteVersion(ctx, "101", DeleteOptions{MoveFixIssuesTo: "100"})
		require.NoError(t, err)
		assert.Equal(t, 2, j.Cache().Versions.Len())
		_, ok := j.Cache().Versions.Get("101")
		assert.False(t, ok)
	})

	t.Run("failed delete keeps cache", func(t *testing.T) {
		err := j.Versions.DeleteVersion(ctx, "101", DeleteOptions{})
		assert.Equal(t, rest.KindRequestFailed, rest.KindOf(err))
		assert.Equal(t, 2, j.Cache().Versions.Len())
	})

	t.Run("create clears", func(t *testing.T) {
		created, err := j.Versions.CreateVersion(ctx, VersionCreateInfo{Name: "2.0.0", ProjectKey: "TST"})
		require.NoError(t, err)
		assert.Equal(t, "102", created.ID)
		assert.Equal(t, "TST", created.ProjectKey)
		assert.Zero(t, j.Cache().Versions.Len())
	})

	t.Run("update clears", func(t *testing.T) {
		_, err := j.Versions.GetVersions(ctx, "TST")
		require.NoError(t, err)
		require.NotZero(t, j.Cache().Versions.Len())

		updated, err := j.Versions.UpdateVersion(ctx, Version{ID: "101", Name: "1.1.1", ProjectKey: "TST"})
		require.NoError(t, err)
		assert.Equal(t, "1.1.1", updated.Name)
		assert.Equal(t, "TST", updated.ProjectKey)
		assert.Zero(t, j.Cache().Versions.Len())
	})

	t.Run("validation", func(t *testing.T) {
		_, err := j.Versions.CreateVersion(ctx, VersionCreateInfo{Name: "x"})
		assert.ErrorIs(t, err, ErrMissingProjectKey)
		_, err = j.Versions.CreateVersion(ctx, VersionCreateInfo{ProjectKey: "TST"})
		assert.ErrorIs(t, err, ErrMissingVersionName)
		_, err = j.Versions.UpdateVersion(ctx, Version{})
		assert.ErrorIs(t, err, ErrMissingVersionID)
		assert.ErrorIs(t, j.Versions.DeleteVersion(ctx, "", DeleteOptions{}), ErrMissingVersionID)
	})

	assert.Equal(t, 2, fake.count("GET /rest/api/2/project/TST/versions"))
}

func TestVersionService_GetVersion(t *testing.T) {
	j, _ := setup(t)

	version, err := j.Versions.GetVersion(context.Background(), "100")
	require.NoError(t, err)
	released, ok := version.ReleaseTime()
	require.True(t, ok)
	assert.Equal(t, 2024, released.Year())

	_, err = j.Versions.GetVersion(context.Background(), "999")
	assert.True(t, errors.Is(err, rest.ErrNotFound))
}

func TestVersionService_WarmVersions(t *testing.T) {
	j, fake := setup(t)

	got, err := j.Versions.WarmVersions(context.Background(), []string{"TST", "OPS"})
	require.NoError(t, err)
	assert.Len(t, got["TST"], 2)
	assert.Len(t, got["OPS"], 1)
	assert.Equal(t, 1, fake.count("GET /rest/api/2/project/TST/versions"))

	_, err = j.Versions.WarmVersions(context.Background(), []string{"TST", ""})
	assert.ErrorIs(t, err, ErrMissingProjectKey)
}
