package jira

import "errors"

var (
	// ErrMissingProjectKey indicates a call that needs a project key got none
	ErrMissingProjectKey = errors.New("project key is required")
	// ErrMissingVersionID indicates a call that needs a version id got none
	ErrMissingVersionID = errors.New("version id is required")
	// ErrMissingVersionName indicates a version create without a name
	ErrMissingVersionName = errors.New("version name is required")
)
