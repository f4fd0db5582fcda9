package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/ejcalderongt/clinica/internal/auth"
	"github.com/ejcalderongt/clinica/internal/store"
)

// RequireAuth resolves the session cookie and populates the auth context.
// Missing, unknown, or expired tokens short-circuit with 401 before any
// downstream handler runs. A session whose account no longer resolves is
// treated the same as no session.
func RequireAuth(sessions *store.SessionStore, nurses *store.NurseStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthenticated(w)
				return
			}

			sess, err := sessions.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				unauthenticated(w)
				return
			}

			nurse, err := nurses.GetByID(sess.NurseID)
			if err != nil || nurse == nil {
				unauthenticated(w)
				return
			}

			ac := auth.Context{
				NurseID: nurse.ID,
				Codigo:  nurse.Codigo,
				IsAdmin: nurse.IsAdmin,
				Token:   sess.Token,
			}

			ctx := auth.WithContext(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin checks the admin claim on the already-authenticated context.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			unauthenticated(w)
			return
		}
		if !ac.IsAdmin {
			writeError(w, http.StatusForbidden, "Acceso denegado. Solo administradores.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthenticated(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "No autenticado")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
