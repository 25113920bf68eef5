package jira

import (
	"context"
	"fmt"
	"net/url"

	"github.com/s0up4200/jiralink/rest"
)

const projectExpand = "expand=lead,url"

// ProjectService reads projects
type ProjectService struct {
	jira *Jira
}

// GetProjects returns every project visible to the caller. The first call
// populates the cache; later calls are served from it until cleared.
func (s *ProjectService) GetProjects(ctx context.Context) ([]Project, error) {
	return s.jira.cache.Projects.GetAll(ctx, nil, func(ctx context.Context) ([]Project, error) {
		s.jira.logger.Debug().Msg("Fetching projects")
		return rest.ExecuteRequestAs[[]Project](ctx, s.jira.client, rest.MethodGet, "rest/api/2/project?"+projectExpand, nil)
	})
}

// GetProject fetches a single project by key. It does not use the cache.
func (s *ProjectService) GetProject(ctx context.Context, key string) (*Project, error) {
	if key == "" {
		return nil, ErrMissingProjectKey
	}
	resource := fmt.Sprintf("rest/api/2/project/%s?%s", url.PathEscape(key), projectExpand)
	project, err := rest.ExecuteRequestAs[Project](ctx, s.jira.client, rest.MethodGet, resource, nil)
	if err != nil {
		return nil, err
	}
	return &project, nil
}
