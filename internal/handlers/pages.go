package handlers

import (
	"londonsimports.org/imports-web/internal/middleware"
	"londonsimports.org/imports-web/internal/nav"
	"londonsimports.org/imports-web/internal/seo"
)

// PageData is the shared view model for pages using the base layout.
type PageData struct {
	Title     string
	SEO       seo.Meta
	Analytics Analytics

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb

	User      *middleware.User
	Flashes   []middleware.Flash
	CSRFToken string

	// Optional per-page view model payloads
	Home     any
	Products any
	Product  any
	Cart     any
	Checkout any
	Orders   any
	Order    any
	Content  any
	Login    any
}
