package main

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"londonsimports.org/imports-web/internal/cms"
)

// ContentPageView drives static content pages.
type ContentPageView struct {
	Page cms.ContentPage
	Body template.HTML
}

// ContentPageHandler renders a static page from the local content store.
func ContentPageHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	page, err := content.GetPage(slug)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		renderBackendError(w, r, err, "Could not load this page right now.")
		return
	}
	body, err := page.HTML()
	if err != nil {
		renderBackendError(w, r, err, "Could not load this page right now.")
		return
	}

	vm := newPageData(r, page.Title)
	if page.SEO.Title != "" {
		vm.SEO.Title = page.SEO.Title
	}
	vm.SEO.Description = page.SEO.Description
	if vm.SEO.Description == "" {
		vm.SEO.Description = page.Summary
	}
	vm.Content = ContentPageView{Page: page, Body: body}
	renderPage(w, r, "content", vm)
}
