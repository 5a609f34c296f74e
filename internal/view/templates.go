// Package view renders the HTML pages.
package view

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/shared"
	"github.com/odyssey-erp/odyssey-crm/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
	nav       []NavItem
}

// NavItem is one entry of the top navigation.
type NavItem struct {
	Label string
	Path  string
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	Flash       *shared.FlashMessage
	CurrentPath string
	Nav         []NavItem
	Data        any
}

// NewEngine parses the embedded templates.
func NewEngine(nav ...NavItem) (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"sortArrow": func(ind listview.SortIndicator) string {
			switch ind {
			case listview.IndicatorAsc:
				return "▲"
			case listview.IndicatorDesc:
				return "▼"
			default:
				return "↕"
			}
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates(), "layouts/*.html", "partials/*.html", "pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl, nav: nav}, nil
}

// Render executes a named template. Nav defaults to the engine's navigation.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	if data.Nav == nil {
		data.Nav = e.nav
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}
