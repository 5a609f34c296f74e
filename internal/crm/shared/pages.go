package shared

import (
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/listview/storage"
	session "github.com/odyssey-erp/odyssey-crm/internal/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/view"
)

// Pages carries what every resource needs to serve its data table.
type Pages struct {
	Templates *view.Engine
	Persister func(*http.Request) listview.Persister
	Observer  listview.FetchObserver
	Logger    *slog.Logger
}

// NewTable wires a Table from p.
func NewTable[T any](p Pages, id, title, path string, columns []listview.Column, spec ListSpec, list ListFunc[T], cells func(T) []string) *Table[T] {
	return &Table[T]{
		ID:        id,
		Title:     title,
		Path:      path,
		Columns:   columns,
		Spec:      spec,
		List:      list,
		Cells:     cells,
		Templates: p.Templates,
		Persister: p.Persister,
		Observer:  p.Observer,
		Logger:    p.Logger,
	}
}

// SessionPersister scopes persisted list state to the caller's session.
// Requests without a session get no persistence.
func SessionPersister(store *storage.Redis) func(*http.Request) listview.Persister {
	return func(r *http.Request) listview.Persister {
		id := session.SessionID(r.Context())
		if id == "" || store == nil {
			return nil
		}
		return store.Scoped(id)
	}
}
