package appMiddleware

import (
	"net/http"
)

// multipartOverhead leaves room for form fields and part headers around the file.
const multipartOverhead = 1 << 20

// LimitBody caps request bodies for methods that carry one. Uploads above the
// limit fail while the handler parses the form.
func LimitBody(maxUploadBytes int64) func(http.Handler) http.Handler {
	limit := maxUploadBytes + multipartOverhead
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
