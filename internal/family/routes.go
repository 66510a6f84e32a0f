package family

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the family portal. Identity travels in the path as a
// patient-id + token pair; no header or query auth is used here.
func (f *Family) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/login", f.handleLogin)

	r.Route("/{patientID}/{token}", func(r chi.Router) {
		r.Get("/", f.handleValidate)
		r.Get("/dashboard", f.handleDashboard)
		r.Get("/care", f.handleListCare)
		r.Post("/care", f.handleRegisterCare)
	})

	return r
}
