package handler

import (
	"net/http"
	"net/url"
)

// flashCookieName carries one-shot notices across a redirect, the way
// server-side frameworks flash messages: set before redirecting, read and
// cleared by the next page request.
const flashCookieName = "flash"

// setFlash stores a notice for the next request. The value is URL-escaped
// because cookie values can't contain spaces or punctuation like "!".
func setFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(message),
		Path:     "/",
		MaxAge:   60, // survive exactly one redirect hop, then expire
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending notice, if any, and clears it so it shows
// only once.
func popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:   flashCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	message, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return message
}
