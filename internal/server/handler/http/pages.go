package http

import (
	"fmt"
	"net/http"

	"github.com/pawmart/frontgate/internal/gate"
)

// servePage serves the application shell for any gated page request.
// The shell is the same for every allowed path; the client application
// renders against the persisted store after hydration. The access state
// is exposed so the shell can pick its initial loading view.
func servePage(w http.ResponseWriter, r *http.Request) {
	facts := gate.FactsFromContext(r.Context())
	state := gate.StateOf(facts)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>PawMart</title></head>
<body data-access-state=%q data-path=%q>
<div id="app"></div>
</body>
</html>
`, state.String(), r.URL.Path)
}
