package auth

import (
	"net/http"
	"net/url"
)

// Decision — результат охранника: пустой Redirect означает "продолжить"
type Decision struct {
	Redirect string
}

// Continue пропускает запрос дальше
var Continue = Decision{}

// RedirectTo перенаправляет запрос
func RedirectTo(location string) Decision {
	return Decision{Redirect: location}
}

// Guard решает, можно ли показать страницу
type Guard func(r *http.Request) Decision

// RequireIdentity отправляет анонимного посетителя на страницу входа
// с возвратом на исходный адрес
func RequireIdentity(loginPath string) Guard {
	return func(r *http.Request) Decision {
		if _, ok := FromContext(r.Context()); ok {
			return Continue
		}
		return RedirectTo(loginPath + "?next=" + url.QueryEscape(r.URL.RequestURI()))
	}
}

// RedirectAuthenticated уводит уже вошедшего пользователя со страницы (например, со страницы входа)
func RedirectAuthenticated(location string) Guard {
	return func(r *http.Request) Decision {
		if _, ok := FromContext(r.Context()); ok {
			return RedirectTo(location)
		}
		return Continue
	}
}

// Guarded применяет охранники по порядку, первый редирект побеждает
func Guarded(h http.Handler, guards ...Guard) http.Handler {
	if len(guards) == 0 {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, g := range guards {
			if d := g(r); d.Redirect != "" {
				http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
				return
			}
		}
		h.ServeHTTP(w, r)
	})
}
