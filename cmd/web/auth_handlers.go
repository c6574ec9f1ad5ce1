package main

import (
	"net/http"
	"net/url"
	"strings"

	"londonsimports.org/imports-web/internal/api"
	mw "londonsimports.org/imports-web/internal/middleware"
)

// LoginView drives the login page.
type LoginView struct {
	Username string
	Next     string
	Error    string
}

// LoginPageHandler renders the login form.
func LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	if mw.UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	vm := newPageData(r, "Sign In")
	vm.SEO.Robots = "noindex, nofollow"
	vm.Login = LoginView{Next: safeNext(r.URL.Query().Get("next"))}
	renderPage(w, r, "login", vm)
}

// LoginSubmitHandler exchanges credentials with the backend and stores the
// issued token in the session.
func LoginSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	next := safeNext(r.FormValue("next"))

	renderFailure := func(msg string) {
		vm := newPageData(r, "Sign In")
		vm.SEO.Robots = "noindex, nofollow"
		vm.Login = LoginView{Username: username, Next: next, Error: msg}
		w.WriteHeader(http.StatusUnauthorized)
		renderPage(w, r, "login", vm)
	}

	if username == "" || password == "" {
		renderFailure("Enter your email and password.")
		return
	}

	resp, err := apiClient.Login(r.Context(), username, password)
	if err != nil {
		renderFailure(api.UserMessage(err, "Sign in failed. Check your details and try again."))
		return
	}

	sess := mw.GetSession(r)
	u := &mw.User{}
	if resp.User != nil {
		u.ID = resp.User.ID
		u.Email = resp.User.Email
		u.Name = resp.User.FullName()
	}
	sess.SignIn(resp.Access, u)

	if next == "" {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// LogoutHandler drops the session identity.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	mw.GetSession(r).SignOut()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeNext keeps post-login redirects on-site.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	if u, err := url.Parse(next); err != nil || u.Host != "" {
		return ""
	}
	return next
}
