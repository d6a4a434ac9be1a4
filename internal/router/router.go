package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-media-backend/internal/config"
	"go-media-backend/internal/handler"
	"go-media-backend/internal/middleware"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Audit        *handler.AuditHandler
	Subscription *handler.SubscriptionHandler
	Channel      *handler.ChannelHandler
	Video        *handler.VideoHandler
	Comment      *handler.CommentHandler
	Like         *handler.LikeHandler
	Playlist     *handler.PlaylistHandler
	Health       *handler.HealthHandler
}

// Options carries the cross-cutting pieces built by the app. Metrics and
// Gatherer are nil when metrics are disabled.
type Options struct {
	Logger    func(http.Handler) http.Handler
	RateLimit *middleware.RateLimitMiddleware
	Metrics   *middleware.Metrics
	Gatherer  prometheus.Gatherer
}

// uploadIdleTimeout bounds the gap between two reads of an upload body.
const uploadIdleTimeout = 30 * time.Second

func New(cfg *config.Config, auth *middleware.AuthMiddleware, h Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	if opts.Logger != nil {
		r.Use(opts.Logger)
	}
	r.Use(middleware.Recovery)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Handler)
	}
	if opts.RateLimit != nil {
		r.Use(opts.RateLimit.Handler)
	}

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	uploads := middleware.UploadLimits(cfg.MaxUploadSize, cfg.UploadTimeout, uploadIdleTimeout)

	r.Route("/api/v1", func(api chi.Router) {
		// Upload routes stream large bodies and carry their own deadlines.
		api.Group(func(up chi.Router) {
			up.Use(auth.RequireAuth, uploads)
			up.Post("/videos", h.Video.Publish)
			up.Patch("/users/me/avatar", h.User.UpdateAvatar)
			up.Patch("/users/me/cover", h.User.UpdateCover)
		})

		api.Group(func(api chi.Router) {
			api.Use(middleware.Timeout(cfg.RequestTimeout))

			api.Get("/health", h.Health.Check)

			api.Route("/auth", func(a chi.Router) {
				a.Post("/register", h.Auth.Register)
				a.Post("/login", h.Auth.Login)
				a.Post("/refresh", h.Auth.Refresh)
				a.With(auth.RequireAuth).Post("/logout", h.Auth.Logout)
			})

			api.Group(func(p chi.Router) {
				p.Use(auth.RequireAuth)

				p.Get("/users/me", h.Auth.Me)
				p.Patch("/users/me", h.User.UpdateAccount)
				p.Post("/users/me/password", h.Auth.ChangePassword)
				p.Get("/users/me/history", h.Video.WatchHistory)
				p.Get("/users/me/liked-videos", h.Video.LikedVideos)
				p.Get("/users/me/audit", h.Audit.List)

				p.Get("/users/{userID}/subscriptions", h.Subscription.SubscribedChannels)
				p.Get("/users/{userID}/tweets", h.Channel.Tweets)
				p.Get("/users/{userID}/playlists", h.Playlist.ListForUser)

				p.Get("/profiles/{username}", h.Channel.Profile)

				p.Get("/channels/{channelID}/stats", h.Channel.Stats)
				p.Get("/channels/{channelID}/videos", h.Channel.Videos)
				p.Get("/channels/{channelID}/subscribers", h.Subscription.Subscribers)
				p.Get("/channels/{channelID}/subscribers/count", h.Subscription.Count)

				p.Get("/dashboard/stats", h.Channel.DashboardStats)
				p.Get("/dashboard/videos", h.Channel.DashboardVideos)

				p.Post("/subscriptions/c/{channelID}", h.Subscription.Toggle)

				p.Get("/videos", h.Video.Feed)
				p.Get("/videos/{videoID}", h.Video.Get)
				p.Patch("/videos/{videoID}/publish", h.Video.TogglePublish)
				p.Delete("/videos/{videoID}", h.Video.Delete)
				p.Get("/videos/{videoID}/comments", h.Comment.List)
				p.Post("/videos/{videoID}/comments", h.Comment.Add)

				p.Delete("/comments/{commentID}", h.Comment.Delete)

				p.Post("/likes/{kind}/{targetID}", h.Like.Toggle)

				p.Post("/playlists", h.Playlist.Create)
				p.Get("/playlists/{playlistID}", h.Playlist.Get)
				p.Delete("/playlists/{playlistID}", h.Playlist.Delete)
				p.Put("/playlists/{playlistID}/videos/{videoID}", h.Playlist.AddVideo)
				p.Delete("/playlists/{playlistID}/videos/{videoID}", h.Playlist.RemoveVideo)
			})
		})
	})

	return r
}
