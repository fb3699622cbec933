package api

import (
	"github.com/platinummonkey/apicheck/pkg/checker"
)

// CheckRequest asks for a compatibility check. Old may be omitted when
// Module names a stored baseline.
type CheckRequest struct {
	Module string   `json:"module,omitempty"`
	Old    string   `json:"old,omitempty"`
	New    string   `json:"new"`
	Hide   []string `json:"hide,omitempty"`
}

// CheckResponse is the outcome of a check. The status code is 200 when the
// check passed and 409 when errors remain after suppression.
type CheckResponse struct {
	Passed bool `json:"passed"`
	*checker.Result
}

// FormatRequest carries snapshot text to canonicalize.
type FormatRequest struct {
	Snapshot string `json:"snapshot"`
}

// FormatResponse carries the canonical snapshot text.
type FormatResponse struct {
	Snapshot string `json:"snapshot"`
	Packages int    `json:"packages"`
	Classes  int    `json:"classes"`
}

// BaselineList is the set of modules with a stored baseline.
type BaselineList struct {
	Backend string   `json:"backend"`
	Modules []string `json:"modules"`
}
