package http

import (
	"net/http"

	"sharednotes/internal/auth"
	"sharednotes/internal/config"
	"sharednotes/internal/directory"
	"sharednotes/internal/http/handler"
	mw "sharednotes/internal/http/middleware"
	"sharednotes/internal/note"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, svc *note.Service, dir directory.Directory, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{Dir: dir}
	r.With(auth.RequireAuth(jwtSvc)).Get("/me", me.Me)

	noteH := &handler.NoteHandler{Svc: svc, Log: log}
	searchH := &handler.SearchHandler{Svc: svc, Log: log}
	shareH := &handler.ShareHandler{Svc: svc, Log: log}
	tagH := &handler.TagHandler{Repo: &note.TagRepo{DB: db}, Log: log}

	r.Route("/notes", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/", noteH.Create)
		r.Get("/", noteH.List)

		r.Get("/private", noteH.ListSection(note.SectionPrivate))
		r.Get("/shared-by-me", noteH.ListSection(note.SectionSharedByMe))
		r.Get("/shared-with-me", noteH.ListSection(note.SectionSharedWithMe))

		r.Get("/{id}", noteH.Get)
		r.Put("/{id}", noteH.Update)
		r.Delete("/{id}", noteH.Delete)

		r.Post("/{id}/share", shareH.Create)
		r.Get("/{id}/shares", shareH.List)
		r.Delete("/{id}/shares/{shareID}", shareH.Remove)
		r.Delete("/{id}/shares/by-email/{email}", shareH.RemoveByEmail)
	})

	r.With(auth.RequireAuth(jwtSvc)).Get("/search", searchH.Search)

	r.Route("/tags", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/", tagH.List)
		r.Post("/", tagH.Create)
		r.Put("/{id}", tagH.Rename)
		r.Delete("/{id}", tagH.Delete)
	})

	return r
}
