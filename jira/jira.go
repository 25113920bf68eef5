package jira

import (
	"github.com/rs/zerolog"

	"github.com/s0up4200/jiralink/cache"
	"github.com/s0up4200/jiralink/rest"
)

// Cache holds the reference data shared by the services of one Jira
type Cache struct {
	Projects *cache.Store[string, Project]
	Versions *cache.Store[string, Version]
}

// NewCache creates empty project and version stores
func NewCache() *Cache {
	return &Cache{
		Projects: cache.New(func(p Project) string { return p.Key }),
		Versions: cache.New(func(v Version) string { return v.ID }),
	}
}

// Jira groups the services for one Jira server
type Jira struct {
	client rest.Requester
	cache  *Cache
	logger zerolog.Logger

	Projects *ProjectService
	Versions *VersionService
}

// New creates the services on top of client with a fresh cache
func New(client rest.Requester, logger zerolog.Logger) *Jira {
	j := &Jira{
		client: client,
		cache:  NewCache(),
		logger: logger,
	}
	j.Projects = &ProjectService{jira: j}
	j.Versions = &VersionService{jira: j}
	return j
}

// Client returns the underlying requester
func (j *Jira) Client() rest.Requester {
	return j.client
}

// Cache returns the shared reference data cache
func (j *Jira) Cache() *Cache {
	return j.cache
}
