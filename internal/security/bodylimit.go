package security

import (
	"net/http"

	"github.com/noah-isme/ishtar-commerce/internal/common"
)

// BodyLimit caps request payload size. Declared oversize bodies are refused
// up front; streamed bodies are cut off by http.MaxBytesReader and surface
// as a 413 from common.DecodeJSON.
type BodyLimit struct {
	Max int64
}

// Middleware applies the limit. A non-positive Max disables it.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	if b.Max <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.Body == http.NoBody {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > b.Max {
			common.JSONError(w, http.StatusRequestEntityTooLarge, common.CodePayloadTooLarge, "request entity too large", map[string]int64{"maxBytes": b.Max})
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, b.Max)
		next.ServeHTTP(w, r)
	})
}
