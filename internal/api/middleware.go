/**
 * @description
 * This file contains custom middleware for the HTTP router. The connector's
 * one exposed endpoint is server-to-server, so it is protected by a shared
 * internal API key rather than end-user authentication.
 *
 * @dependencies
 * - net/http: Standard Go library.
 */

package api

import "net/http"

// InternalAuthMiddleware validates the internal API key for server-to-server
// calls. When no key is configured the middleware is a pass-through.
func InternalAuthMiddleware(requiredKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiredKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get("X-Internal-API-Key")
			if provided == "" || provided != requiredKey {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
