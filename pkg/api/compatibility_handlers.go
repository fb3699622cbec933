package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/apicheck/pkg/checker"
	"github.com/platinummonkey/apicheck/pkg/compatibility"
	"github.com/platinummonkey/apicheck/pkg/httputil"
	"github.com/platinummonkey/apicheck/pkg/snapshot"
	"github.com/platinummonkey/apicheck/pkg/storage"
)

// CompatibilityHandlers handles compatibility checking HTTP requests
type CompatibilityHandlers struct {
	checker *checker.Checker
	store   storage.BaselineReader
}

// NewCompatibilityHandlers creates a new compatibility handlers instance.
// store may be nil, in which case every request must carry its old snapshot.
func NewCompatibilityHandlers(c *checker.Checker, store storage.BaselineReader) *CompatibilityHandlers {
	return &CompatibilityHandlers{checker: c, store: store}
}

// RegisterRoutes registers compatibility routes
func (h *CompatibilityHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/check", h.check).Methods("POST")
	router.HandleFunc("/v1/format", h.format).Methods("POST")
}

// check handles POST /v1/check
func (h *CompatibilityHandlers) check(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.New == "" {
		httputil.WriteBadRequest(w, "new is required")
		return
	}

	var oldSrc checker.Source
	switch {
	case req.Old != "":
		oldSrc = checker.TextSource{Name: "old", Text: []byte(req.Old)}
	case req.Module != "" && h.store != nil:
		if err := storage.ValidateModuleName(req.Module); err != nil {
			httputil.WriteBadRequest(w, err.Error())
			return
		}
		oldSrc = checker.StoreSource{Store: h.store, Module: req.Module}
	default:
		httputil.WriteBadRequest(w, "old is required unless module names a stored baseline")
		return
	}

	hide, err := compatibility.ParseKinds(req.Hide)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	c := h.checker
	if len(hide) > 0 {
		c = c.With(checker.WithHideList(hide...))
	}
	result, err := c.Check(r.Context(), req.Module, oldSrc, checker.TextSource{Name: "new", Text: []byte(req.New)})
	if err != nil {
		writeLoadError(w, err)
		return
	}

	status := http.StatusOK
	if !result.Passed() {
		status = http.StatusConflict
	}
	httputil.WriteJSON(w, status, CheckResponse{Passed: result.Passed(), Result: result})
}

// format handles POST /v1/format
func (h *CompatibilityHandlers) format(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	m, err := h.checker.Load(r.Context(), checker.TextSource{Name: "snapshot", Text: []byte(req.Snapshot)})
	if err != nil {
		writeLoadError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FormatResponse{
		Snapshot: snapshot.Write(m),
		Packages: len(m.PackageNames()),
		Classes:  m.ClassCount(),
	})
}
