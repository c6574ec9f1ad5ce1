package main

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"londonsimports.org/imports-web/internal/format"
	"londonsimports.org/imports-web/internal/handlers"
	mw "londonsimports.org/imports-web/internal/middleware"
	"londonsimports.org/imports-web/internal/nav"
)

var tmplCache *template.Template

func logError(r *http.Request, err error) {
	logger.Error("render failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"now":      time.Now,
		"ghs":      format.Cedis,
		"date":     format.Date,
		"datetime": format.DateTime,
		"money":    func(d decimal.Decimal) string { return d.StringFixed(2) },
		"safejs":   func(s string) template.JS { return template.JS(s) },
	}
}

// parseTemplates recursively discovers and parses all .tmpl files.
// ParseGlob doesn't support **, hence the walk.
func parseTemplates() (*template.Template, error) {
	var files []string
	if err := filepath.WalkDir(cfg.TemplatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", cfg.TemplatesDir)
	}
	return template.New("_root").Funcs(templateFuncs()).ParseFiles(files...)
}

func templates(w http.ResponseWriter) *template.Template {
	if devMode {
		// reparse per request so template edits show up without a restart
		tc, err := parseTemplates()
		if err != nil {
			http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
			return nil
		}
		return tc
	}
	return tmplCache
}

// renderPage executes a page template inside the base layout.
func renderPage(w http.ResponseWriter, r *http.Request, page string, vm handlers.PageData) {
	t := templates(w)
	if t == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		handlers.PageData
		Page string
	}{PageData: vm, Page: page}
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		logError(r, err)
		http.Error(w, "template exec error", http.StatusInternalServerError)
	}
}

// renderTemplate executes a named fragment without the layout (htmx swaps).
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	t := templates(w)
	if t == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, name, data); err != nil {
		logError(r, err)
	}
}

// newPageData assembles the layout fields every page shares.
func newPageData(r *http.Request, title string) handlers.PageData {
	sess := mw.GetSession(r)
	vm := handlers.PageData{
		Title:       title,
		Path:        r.URL.Path,
		Nav:         nav.Build(r.URL.Path),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path),
		Analytics:   handlers.LoadAnalyticsFromEnv(),
		User:        mw.UserFromContext(r.Context()),
		Flashes:     sess.TakeFlashes(),
		CSRFToken:   sess.CSRFToken,
	}
	vm.SEO.Title = title + " | London's Imports"
	vm.SEO.OG.SiteName = "London's Imports"
	vm.SEO.OG.Title = vm.SEO.Title
	vm.SEO.OG.Type = "website"
	vm.SEO.Twitter.Card = "summary_large_image"
	return vm
}
