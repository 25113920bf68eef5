package jira

import (
	"time"
)

// DateLayout is the format Jira uses for version dates
const DateLayout = "2006-01-02"

// User represents a Jira user as embedded in other resources
type User struct {
	Self         string `json:"self,omitempty"`
	Key          string `json:"key,omitempty"`
	AccountID    string `json:"accountId,omitempty"`
	Name         string `json:"name,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	Active       bool   `json:"active"`
	TimeZone     string `json:"timeZone,omitempty"`
}

// ProjectCategory groups projects
type ProjectCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Project represents a Jira project
type Project struct {
	ID             string            `json:"id"`
	Key            string            `json:"key"`
	Name           string            `json:"name"`
	Self           string            `json:"self,omitempty"`
	Description    string            `json:"description,omitempty"`
	URL            string            `json:"url,omitempty"`
	Lead           *User             `json:"lead,omitempty"`
	ProjectTypeKey string            `json:"projectTypeKey,omitempty"`
	Category       *ProjectCategory  `json:"projectCategory,omitempty"`
	AvatarURLs     map[string]string `json:"avatarUrls,omitempty"`
	Archived       bool              `json:"archived,omitempty"`
}

// LeadName returns the display name of the project lead, if expanded
func (p Project) LeadName() string {
	if p.Lead == nil {
		return ""
	}
	if p.Lead.DisplayName != "" {
		return p.Lead.DisplayName
	}
	return p.Lead.Name
}

// Version represents a project version (fix version / release)
type Version struct {
	ID          string `json:"id"`
	Self        string `json:"self,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Archived    bool   `json:"archived"`
	Released    bool   `json:"released"`
	Overdue     bool   `json:"overdue,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	ProjectID   int64  `json:"projectId,omitempty"`

	// ProjectKey is stamped by the client; Jira does not return it
	ProjectKey string `json:"-"`
}

// ReleaseTime parses ReleaseDate
func (v Version) ReleaseTime() (time.Time, bool) {
	return parseDate(v.ReleaseDate)
}

// StartTime parses StartDate
func (v Version) StartTime() (time.Time, bool) {
	return parseDate(v.StartDate)
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// VersionCreateInfo is the payload for creating a version
type VersionCreateInfo struct {
	Name        string `json:"name"`
	ProjectKey  string `json:"project"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	Archived    bool   `json:"archived"`
	Released    bool   `json:"released"`
}

// PagedResult is one page of a paginated Jira collection
type PagedResult[T any] struct {
	StartAt    int  `json:"startAt"`
	MaxResults int  `json:"maxResults"`
	Total      int  `json:"total"`
	IsLast     bool `json:"isLast"`
	Values     []T  `json:"values"`
}
