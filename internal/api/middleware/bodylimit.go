package middleware

import "net/http"

// DefaultMaxBody bounds JSON request bodies. Progress reports and login
// forms are a few hundred bytes.
const DefaultMaxBody = 64 << 10

// MaxBodySize limits the request body to maxBytes.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
