package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/apicheck/pkg/checker"
	"github.com/platinummonkey/apicheck/pkg/httputil"
	"github.com/platinummonkey/apicheck/pkg/snapshot"
	"github.com/platinummonkey/apicheck/pkg/storage"
)

// BaselineHandlers serves and replaces stored baselines.
type BaselineHandlers struct {
	checker *checker.Checker
	store   storage.BaselineStore
}

// NewBaselineHandlers creates baseline handlers over store.
func NewBaselineHandlers(c *checker.Checker, store storage.BaselineStore) *BaselineHandlers {
	return &BaselineHandlers{checker: c, store: store}
}

// RegisterRoutes registers baseline routes. Module names may contain
// slashes.
func (h *BaselineHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/baselines", h.list).Methods("GET")
	router.HandleFunc("/v1/baselines/{module:.+}", h.get).Methods("GET")
	router.HandleFunc("/v1/baselines/{module:.+}", h.put).Methods("PUT")
}

// list handles GET /v1/baselines
func (h *BaselineHandlers) list(w http.ResponseWriter, r *http.Request) {
	modules, err := h.store.List(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if modules == nil {
		modules = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, BaselineList{Backend: h.store.Name(), Modules: modules})
}

// get handles GET /v1/baselines/{module}
func (h *BaselineHandlers) get(w http.ResponseWriter, r *http.Request) {
	module, ok := h.module(w, r)
	if !ok {
		return
	}
	data, err := h.store.Get(r.Context(), module)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	httputil.WriteText(w, http.StatusOK, string(data))
}

// put handles PUT /v1/baselines/{module}. The body must parse; the stored
// text is its canonical form.
func (h *BaselineHandlers) put(w http.ResponseWriter, r *http.Request) {
	module, ok := h.module(w, r)
	if !ok {
		return
	}
	body, err := httputil.ReadBody(r)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	m, err := h.checker.Load(r.Context(), checker.TextSource{Name: module, Text: body})
	if err != nil {
		writeLoadError(w, err)
		return
	}

	canonical := snapshot.Write(m)
	if err := h.store.Put(r.Context(), module, []byte(canonical)); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteText(w, http.StatusOK, canonical)
}

func (h *BaselineHandlers) module(w http.ResponseWriter, r *http.Request) (string, bool) {
	module, ok := httputil.ParsePathStringOrError(w, r, "module")
	if !ok {
		return "", false
	}
	if err := storage.ValidateModuleName(module); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return "", false
	}
	return module, true
}
