package main

import (
	"time"

	"londonsimports.org/imports-web/internal/paystack"
)

// fieldError is a user-visible validation or flow failure.
type fieldError struct {
	Message  string
	Field    string
	Blocking bool
}

// responsePresenter collects flow effects during one request so the handler
// can turn them into a single HTTP response afterwards.
type responsePresenter struct {
	errors    []fieldError
	notices   []string
	popup     *paystack.Setup
	navOrder  string
	navAfter  time.Duration
	navigated bool
	toCart    bool
}

func (p *responsePresenter) ShowError(message, field string, blocking bool) {
	p.errors = append(p.errors, fieldError{Message: message, Field: field, Blocking: blocking})
}

func (p *responsePresenter) ShowNotice(message string) {
	p.notices = append(p.notices, message)
}

func (p *responsePresenter) OpenPopup(setup paystack.Setup) {
	p.popup = &setup
}

func (p *responsePresenter) NavigateToSuccess(orderNumber string, after time.Duration) {
	p.navOrder = orderNumber
	p.navAfter = after
	p.navigated = true
}

func (p *responsePresenter) RedirectToCart() { p.toCart = true }

// ClearCart is a no-op here: the backend empties the cart when the order is
// created, and the next cart fetch reflects that.
func (p *responsePresenter) ClearCart() {}

func (p *responsePresenter) blockingError() string {
	for _, e := range p.errors {
		if e.Blocking {
			return e.Message
		}
	}
	return ""
}

func (p *responsePresenter) fieldErrors() map[string]string {
	if len(p.errors) == 0 {
		return nil
	}
	out := make(map[string]string, len(p.errors))
	for _, e := range p.errors {
		key := e.Field
		if key == "" {
			key = "_form"
		}
		if _, exists := out[key]; !exists {
			out[key] = e.Message
		}
	}
	return out
}
