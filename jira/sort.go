package jira

import (
	"slices"
	"strings"

	"github.com/blang/semver"
)

// SortVersions orders versions by semantic version. Names that do not parse
// sort after those that do, by name.
func SortVersions(versions []Version) {
	type keyed struct {
		v   semver.Version
		ok  bool
		ver Version
	}

	items := make([]keyed, len(versions))
	for i, v := range versions {
		parsed, err := semver.ParseTolerant(v.Name)
		items[i] = keyed{v: parsed, ok: err == nil, ver: v}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		switch {
		case a.ok && b.ok:
			if c := a.v.Compare(b.v); c != 0 {
				return c
			}
		case a.ok:
			return -1
		case b.ok:
			return 1
		}
		return strings.Compare(a.ver.Name, b.ver.Name)
	})

	for i := range items {
		versions[i] = items[i].ver
	}
}

// Latest returns the highest released version, if any
func Latest(versions []Version) (Version, bool) {
	released := make([]Version, 0, len(versions))
	for _, v := range versions {
		if v.Released && !v.Archived {
			released = append(released, v)
		}
	}
	if len(released) == 0 {
		return Version{}, false
	}
	SortVersions(released)
	return released[len(released)-1], true
}
