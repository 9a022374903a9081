package httpserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/cyclekeeper/internal/auth"
	"github.com/dmitrijs2005/cyclekeeper/internal/common"
)

// authorize checks that r carries a trigger token signed with secret.
func authorize(r *http.Request, secret string) error {
	a := r.Header.Get("Authorization")
	tok, ok := strings.CutPrefix(a, "Bearer ")
	if !ok {
		return fmt.Errorf("%w: missing bearer token", common.ErrorUnauthorized)
	}
	scope, err := auth.ScopeFromToken(tok, []byte(secret))
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	if scope != auth.ScopeTrigger {
		return fmt.Errorf("%w: scope %q", common.ErrorUnauthorized, scope)
	}
	return nil
}

// Auth admits requests carrying a valid trigger token as a Bearer header.
func Auth(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := authorize(r, secret); err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
