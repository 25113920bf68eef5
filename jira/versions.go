package jira

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/go-querystring/query"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/jiralink/rest"
)

// DefaultPageSize is the page size used when none is given
const DefaultPageSize = 50

// MaxWarmConcurrency bounds concurrent project loads in WarmVersions
const MaxWarmConcurrency = 5

// VersionService reads and mutates project versions
type VersionService struct {
	jira *Jira
}

type pageOptions struct {
	StartAt    int `url:"startAt"`
	MaxResults int `url:"maxResults"`
}

// DeleteOptions moves issues off a version before it is deleted
type DeleteOptions struct {
	MoveFixIssuesTo      string `url:"moveFixIssuesTo,omitempty"`
	MoveAffectedIssuesTo string `url:"moveAffectedIssuesTo,omitempty"`
}

// GetVersions returns the versions of a project, served from the cache once
// any version of that project is cached
func (s *VersionService) GetVersions(ctx context.Context, projectKey string) ([]Version, error) {
	if projectKey == "" {
		return nil, ErrMissingProjectKey
	}

	ofProject := func(v Version) bool { return v.ProjectKey == projectKey }

	return s.jira.cache.Versions.GetAll(ctx, ofProject, func(ctx context.Context) ([]Version, error) {
		s.jira.logger.Debug().Str("project", projectKey).Msg("Fetching versions")

		resource := fmt.Sprintf("rest/api/2/project/%s/versions", url.PathEscape(projectKey))
		versions, err := rest.ExecuteRequestAs[[]Version](ctx, s.jira.client, rest.MethodGet, resource, nil)
		if err != nil {
			return nil, err
		}
		for i := range versions {
			versions[i].ProjectKey = projectKey
		}
		return versions, nil
	})
}

// GetPagedVersions returns one page of a project's versions. Pages are never
// cached.
func (s *VersionService) GetPagedVersions(ctx context.Context, projectKey string, startAt, maxResults int) (*PagedResult[Version], error) {
	if projectKey == "" {
		return nil, ErrMissingProjectKey
	}
	if maxResults <= 0 {
		maxResults = DefaultPageSize
	}

	params, err := query.Values(pageOptions{StartAt: startAt, MaxResults: maxResults})
	if err != nil {
		return nil, fmt.Errorf("failed to encode page options: %w", err)
	}

	req := &rest.Request{
		Method:   rest.MethodGet,
		Resource: fmt.Sprintf("rest/api/2/project/%s/version", url.PathEscape(projectKey)),
		Params:   params,
	}

	var page PagedResult[Version]
	if err := s.execute(ctx, req, &page); err != nil {
		return nil, err
	}
	for i := range page.Values {
		page.Values[i].ProjectKey = projectKey
	}
	return &page, nil
}

// CreateVersion creates a version and invalidates the version cache
func (s *VersionService) CreateVersion(ctx context.Context, info VersionCreateInfo) (*Version, error) {
	if info.ProjectKey == "" {
		return nil, ErrMissingProjectKey
	}
	if info.Name == "" {
		return nil, ErrMissingVersionName
	}

	version, err := rest.ExecuteRequestAs[Version](ctx, s.jira.client, rest.MethodPost, "rest/api/2/version", info)
	if err != nil {
		return nil, err
	}
	version.ProjectKey = info.ProjectKey

	s.jira.cache.Versions.Clear()

	s.jira.logger.Info().
		Str("project", info.ProjectKey).
		Str("version", version.Name).
		Str("id", version.ID).
		Msg("Created version")

	return &version, nil
}

// UpdateVersion saves version and invalidates the version cache
func (s *VersionService) UpdateVersion(ctx context.Context, version Version) (*Version, error) {
	if version.ID == "" {
		return nil, ErrMissingVersionID
	}

	resource := "rest/api/2/version/" + url.PathEscape(version.ID)
	updated, err := rest.ExecuteRequestAs[Version](ctx, s.jira.client, rest.MethodPut, resource, version)
	if err != nil {
		return nil, err
	}
	updated.ProjectKey = version.ProjectKey

	s.jira.cache.Versions.Clear()

	return &updated, nil
}

// DeleteVersion deletes a version and evicts it from the cache
func (s *VersionService) DeleteVersion(ctx context.Context, id string, opts DeleteOptions) error {
	if id == "" {
		return ErrMissingVersionID
	}

	params, err := query.Values(opts)
	if err != nil {
		return fmt.Errorf("failed to encode delete options: %w", err)
	}

	req := &rest.Request{
		Method:   rest.MethodDelete,
		Resource: "rest/api/2/version/" + url.PathEscape(id),
		Params:   params,
	}
	if _, err := s.jira.client.Execute(ctx, req); err != nil {
		return err
	}

	s.jira.cache.Versions.Remove(id)

	s.jira.logger.Info().Str("id", id).Msg("Deleted version")
	return nil
}

// GetVersion fetches a single version by id. It does not use the cache.
func (s *VersionService) GetVersion(ctx context.Context, id string) (*Version, error) {
	if id == "" {
		return nil, ErrMissingVersionID
	}

	var version Version
	req := &rest.Request{Method: rest.MethodGet, Resource: "rest/api/2/version/" + url.PathEscape(id)}
	if err := s.execute(ctx, req, &version); err != nil {
		return nil, err
	}
	return &version, nil
}

// WarmVersions loads the versions of several projects concurrently. It stops
// at the first failure; projects loaded before it stay cached.
func (s *VersionService) WarmVersions(ctx context.Context, projectKeys []string) (map[string][]Version, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxWarmConcurrency)

	results := make([][]Version, len(projectKeys))
	for i, key := range projectKeys {
		g.Go(func() error {
			versions, err := s.GetVersions(ctx, key)
			if err != nil {
				return fmt.Errorf("project %s: %w", key, err)
			}
			results[i] = versions
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	byProject := make(map[string][]Version, len(projectKeys))
	for i, key := range projectKeys {
		byProject[key] = results[i]
	}
	return byProject, nil
}

func (s *VersionService) execute(ctx context.Context, req *rest.Request, v any) error {
	raw, err := s.jira.client.Execute(ctx, req)
	if err != nil {
		return err
	}
	return s.jira.client.Decode(raw, v)
}
