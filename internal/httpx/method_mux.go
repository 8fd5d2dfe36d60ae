package httpx

import (
	"net/http"
	"sort"
	"strings"
)

// MethodMux chooses a handler based on the incoming HTTP method.
// Methods without a handler get a JSON 405 and an Allow header.
func MethodMux(handlers map[string]http.Handler) http.Handler {
	allowed := make([]string, 0, len(handlers))
	for m := range handlers {
		allowed = append(allowed, m)
	}
	sort.Strings(allowed)
	allow := strings.Join(allowed, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.Method]; ok {
			h.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allow)
		JSONError(w, http.StatusMethodNotAllowed)
	})
}
