package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"londonsimports.org/imports-web/internal/api"
	"londonsimports.org/imports-web/internal/seo"
)

// ProductsHandler renders the catalog listing with search, category, and
// pagination passed through to the backend.
func ProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))
	category := strings.TrimSpace(q.Get("category"))
	pageNum := pageNumber(q.Get("page"))

	query := map[string]string{}
	if search != "" {
		query["search"] = search
	}
	if category != "" {
		query["category"] = category
	}
	if pageNum > 1 {
		query["page"] = strconv.Itoa(pageNum)
	}

	page, err := apiClient.ListProducts(apiCtx(r), query)
	if err != nil {
		renderBackendError(w, r, err, "Could not load the catalog right now.")
		return
	}

	vm := newPageData(r, "Shop")
	vm.SEO.Description = "Browse the current import catalog and pre-order before the next batch ships."
	vm.Products = buildProductsView(page, search, category, pageNum)
	renderPage(w, r, "products", vm)
}

// ProductHandler renders one catalog entry.
func ProductHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	product, err := apiClient.GetProduct(apiCtx(r), slug)
	if err != nil {
		if api.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		renderBackendError(w, r, err, "Could not load this product right now.")
		return
	}

	vm := newPageData(r, product.Name)
	vm.SEO.Description = product.Description
	vm.SEO.JSONLD = []string{seo.JSON(seo.Product(
		product.Name,
		product.Description,
		siteBaseURL(r)+"/products/"+product.Slug,
		product.ImageURL,
		product.Price.StringFixed(2),
		"GHS",
	))}
	vm.Product = buildProductView(product)
	renderPage(w, r, "product", vm)
}

// renderBackendError shows a full error page for failures that leave nothing
// to render. The backend's message is surfaced when it sent one.
func renderBackendError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	vm := newPageData(r, "Something went wrong")
	vm.Content = map[string]string{"Message": api.UserMessage(err, fallback)}
	w.WriteHeader(http.StatusBadGateway)
	renderPage(w, r, "error", vm)
}
