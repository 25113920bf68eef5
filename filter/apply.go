package filter

import (
	"github.com/s0up4200/jiralink/jira"
)

// Projects returns the projects matching f, preserving order. A nil filter
// matches everything.
func Projects(f *Filter, projects []jira.Project) []jira.Project {
	if f == nil {
		return projects
	}
	matched := make([]jira.Project, 0, len(projects))
	for _, p := range projects {
		if f.MatchProject(p) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Versions returns the versions matching f, preserving order. A nil filter
// matches everything.
func Versions(f *Filter, versions []jira.Version) []jira.Version {
	if f == nil {
		return versions
	}
	matched := make([]jira.Version, 0, len(versions))
	for _, v := range versions {
		if f.MatchVersion(v) {
			matched = append(matched, v)
		}
	}
	return matched
}
