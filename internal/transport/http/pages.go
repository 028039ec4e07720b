package http

import (
	"net/http"
	"path/filepath"

	"github.com/asquebay/simple-storefront/internal/auth"
)

const LoginPath = "/login"

// page — строка таблицы маршрутов страниц
type page struct {
	pattern string
	file    string
	guards  []auth.Guard
}

// pages — таблица маршрутов; охранники применяются при сборке маршрутизатора
func pages() []page {
	signedIn := auth.RequireIdentity(LoginPath)

	return []page{
		{pattern: "GET /{$}", file: "index.html"},
		{pattern: "GET /products/new", file: "product_new.html", guards: []auth.Guard{signedIn}},
		{pattern: "GET /products/{id}", file: "product.html"},
		{pattern: "GET /cart", file: "cart.html", guards: []auth.Guard{signedIn}},
		{pattern: "GET /checkout/success", file: "checkout_success.html"},
		{pattern: "GET " + LoginPath, file: "login.html", guards: []auth.Guard{auth.RedirectAuthenticated("/")}},
	}
}

// page отдаёт html-файл страницы; данные страница получает через RPC
func (h *Handler) page(file string) http.Handler {
	path := filepath.Join(h.webDir, file)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, path)
	})
}
