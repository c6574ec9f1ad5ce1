package main

import (
	"net/http"

	"londonsimports.org/imports-web/internal/handlers"
	"londonsimports.org/imports-web/internal/seo"
)

// HomeHandler renders the landing page.
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	vm := newPageData(r, "Pre-order UK Imports in Ghana")
	vm.SEO.Description = "London's Imports brings quality goods from the UK to Ghana. Pre-order with a 30% deposit and pay the rest on arrival."
	vm.SEO.JSONLD = []string{
		seo.JSON(seo.Organization("London's Imports", siteBaseURL(r), "")),
		seo.JSON(seo.WebSite("London's Imports", siteBaseURL(r))),
	}
	vm.Home = handlers.BuildHomeData()
	renderPage(w, r, "home", vm)
}

func siteBaseURL(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
		scheme = "http"
	}
	return scheme + "://" + r.Host
}
