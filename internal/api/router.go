package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/yuexizhang/kindness-companion/internal/api/middleware"
	"github.com/yuexizhang/kindness-companion/internal/api/respond"
)

// RouterConfig bundles the handlers and middleware the router mounts.
type RouterConfig struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Challenges *ChallengeHandler
	Progress   *ProgressHandler
	Reminders  *ReminderHandler
	Pet        *PetHandler
	Reports    *ReportHandler
	Wall       *WallHandler

	AuthMiddleware *middleware.AuthMiddleware
}

// NewRouter builds the HTTP route table. Auth endpoints and the health
// check are public; everything else requires a valid access token.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Trace)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, MessageResponse{Message: "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", cfg.Auth.Register)
		r.Post("/auth/login", cfg.Auth.Login)
		r.Post("/auth/refresh", cfg.Auth.Refresh)

		// The wall listing stays public so the community feed can be
		// browsed without an account.
		r.Get("/wall/posts", cfg.Wall.ListPosts)

		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthMiddleware.Authenticate)

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", cfg.Users.GetProfile)
				r.Put("/", cfg.Users.UpdateProfile)
				r.Put("/ai-consent", cfg.Users.SetConsent)
				r.Post("/delete", cfg.Users.DeleteAccount)
				r.Get("/stats", cfg.Progress.UserStats)
			})

			r.Route("/challenges", func(r chi.Router) {
				r.Get("/", cfg.Challenges.List)
				r.Post("/", cfg.Challenges.Create)
				r.Get("/categories", cfg.Challenges.Categories)
				r.Get("/summary", cfg.Challenges.Summary)
				r.Get("/subscribed", cfg.Challenges.ListSubscribed)
				r.Get("/{challengeID}", cfg.Challenges.Get)
				r.Post("/{challengeID}/subscribe", cfg.Challenges.Subscribe)
				r.Delete("/{challengeID}/subscribe", cfg.Challenges.Unsubscribe)
				r.Get("/{challengeID}/check-ins", cfg.Progress.ListByChallenge)
				r.Get("/{challengeID}/stats", cfg.Progress.ChallengeStats)
			})

			r.Route("/check-ins", func(r chi.Router) {
				r.Get("/", cfg.Progress.List)
				r.Post("/", cfg.Progress.CheckIn)
				r.Post("/undo", cfg.Progress.UndoCheckIn)
			})

			r.Route("/reminders", func(r chi.Router) {
				r.Get("/", cfg.Reminders.List)
				r.Post("/", cfg.Reminders.Create)
				r.Put("/{reminderID}", cfg.Reminders.Update)
				r.Delete("/{reminderID}", cfg.Reminders.Delete)
			})

			r.Route("/pet", func(r chi.Router) {
				r.Post("/events", cfg.Pet.React)
				r.Get("/history", cfg.Pet.History)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/", cfg.Reports.List)
				r.Post("/", cfg.Reports.Request)
				r.Get("/latest", cfg.Reports.Latest)
			})

			// Wall routes are registered flat so the public listing above
			// can share the /wall/posts pattern without a subrouter mount.
			r.Post("/wall/posts", cfg.Wall.CreatePost)
			r.Get("/wall/posts/mine", cfg.Wall.ListMyPosts)
			r.Get("/wall/posts/{postID}", cfg.Wall.GetPost)
			r.Delete("/wall/posts/{postID}", cfg.Wall.DeletePost)
			r.Post("/wall/posts/{postID}/like", cfg.Wall.LikePost)
			r.Delete("/wall/posts/{postID}/like", cfg.Wall.UnlikePost)
			r.Get("/wall/posts/{postID}/comments", cfg.Wall.ListComments)
			r.Post("/wall/posts/{postID}/comments", cfg.Wall.CreateComment)
			r.Delete("/wall/comments/{commentID}", cfg.Wall.DeleteComment)
			r.Post("/wall/comments/{commentID}/like", cfg.Wall.LikeComment)
			r.Delete("/wall/comments/{commentID}/like", cfg.Wall.UnlikeComment)
		})
	})

	return r
}
