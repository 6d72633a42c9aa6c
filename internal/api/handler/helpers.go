package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// pathParam returns a chi URL parameter decoded exactly once. chi matches
// on r.URL.RawPath when it is set, so only then is the value still escaped
// ("65000%3A100"); otherwise net/http has already decoded it.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return raw
	}
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// vrfKey returns the {namespace} and {name} URL parameters.
func vrfKey(r *http.Request) (namespace, name string) {
	return pathParam(r, "namespace"), pathParam(r, "name")
}
