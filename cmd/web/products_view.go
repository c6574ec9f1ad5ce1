package main

import (
	"strconv"

	"londonsimports.org/imports-web/internal/api"
	"londonsimports.org/imports-web/internal/format"
	"londonsimports.org/imports-web/internal/money"
)

// ProductsView drives the catalog listing page.
type ProductsView struct {
	Products []ProductCard
	Count    int
	Search   string
	Category string
	Page     int
	PrevPage int
	NextPage int
	HasNext  bool
	HasPrev  bool
}

// ProductCard is one catalog tile.
type ProductCard struct {
	Slug     string
	Name     string
	Price    string
	Deposit  string
	ImageURL string
	Category string
	Vendor   string
}

// ProductView drives the product detail page.
type ProductView struct {
	ProductCard
	Description string
}

func buildProductsView(page *api.ProductPage, search, category string, pageNum int) ProductsView {
	view := ProductsView{
		Count:    page.Count,
		Search:   search,
		Category: category,
		Page:     pageNum,
		PrevPage: pageNum - 1,
		NextPage: pageNum + 1,
		HasNext:  page.Next != "",
		HasPrev:  page.Previous != "",
	}
	view.Products = make([]ProductCard, 0, len(page.Results))
	for i := range page.Results {
		view.Products = append(view.Products, buildProductCard(&page.Results[i]))
	}
	return view
}

func buildProductCard(p *api.Product) ProductCard {
	return ProductCard{
		Slug:     p.Slug,
		Name:     p.Name,
		Price:    format.Cedis(p.Price),
		Deposit:  format.Cedis(money.Deposit(p.Price)),
		ImageURL: p.ImageURL,
		Category: p.Category,
		Vendor:   p.VendorName,
	}
}

func buildProductView(p *api.Product) ProductView {
	return ProductView{
		ProductCard: buildProductCard(p),
		Description: p.Description,
	}
}

func pageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
