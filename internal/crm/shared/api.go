package shared

import (
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
)

// ServeList answers a JSON list request with a listview.PageResponse.
func ServeList[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, spec ListSpec, list ListFunc[T]) {
	state, err := ParseListState(r.URL.Query(), spec)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, total, err := list(r.Context(), state)
	if err != nil {
		if logger != nil {
			logger.Error("list "+spec.Table, slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listview.NewPageResponse(items, total, state))
}
