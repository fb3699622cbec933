package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/platinummonkey/apicheck/pkg/httputil"
	"github.com/platinummonkey/apicheck/pkg/snapshot"
	"github.com/platinummonkey/apicheck/pkg/storage"
)

// writeLoadError maps an error loading a snapshot to a response: parse
// errors carry their position, missing baselines are 404s.
func writeLoadError(w http.ResponseWriter, err error) {
	var perr *snapshot.ParseError
	switch {
	case errors.As(err, &perr):
		details := map[string]string{
			"line":   strconv.Itoa(perr.Pos.Line),
			"column": strconv.Itoa(perr.Pos.Column),
		}
		if perr.File != "" {
			details["source"] = perr.File
		}
		httputil.WriteDetailedError(w, http.StatusBadRequest, err, details)
	case errors.Is(err, storage.ErrNotFound):
		httputil.WriteNotFoundError(w, err.Error())
	case errors.Is(err, httputil.ErrBodyTooLarge):
		httputil.WriteErrorMessage(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		httputil.WriteInternalError(w, err)
	}
}
