// Package router wires handlers, middleware and the admin panel into an
// echo instance.
package router

import (
	"context"
	"database/sql"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/julo-ch/www/internal/admin"
	"github.com/julo-ch/www/internal/config"
	"github.com/julo-ch/www/internal/flash"
	"github.com/julo-ch/www/internal/handler"
	"github.com/julo-ch/www/internal/logging"
	"github.com/julo-ch/www/internal/mail"
	"github.com/julo-ch/www/internal/markup"
	"github.com/julo-ch/www/internal/middleware"
	"github.com/julo-ch/www/internal/repository"
	"github.com/julo-ch/www/internal/session"
	"github.com/julo-ch/www/internal/view"
)

// Deps are the collaborators the router needs. Redis may be nil.
type Deps struct {
	Config    config.Config
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	DB        *sql.DB
	Redis     *redis.Client
	Sessions  *session.Manager
	Mailer    mail.Sender
	Log       logging.Logger
}

// New builds the complete application.
func New(d Deps) (*echo.Echo, error) {
	renderer, err := view.New(d.Config.Site)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = d.Config.Debug
	e.IPExtractor = IPExtractor(d.Config.TrustedProxies)
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(flash.Middleware(d.Config.Session.CookieSecure))
	e.Use(middleware.LoadSession(d.Sessions))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.SecureWithConfig(echomw.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
	}))

	md := markup.New()
	posts := repository.NewPostRepo(d.DB)
	users := repository.NewUserRepo(d.DB)

	RegisterPublic(e, d, md, posts, users)
	RegisterAuth(e, d)
	RegisterAdmin(e, d)
	return e, nil
}

// IPExtractor decides which address keys the rate limiter. Without trusted
// proxies forwarding headers are ignored; with them, X-Forwarded-For is only
// honoured for hops inside the listed networks.
func IPExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// RegisterPublic registers the routes every visitor can use.
func RegisterPublic(e *echo.Echo, d Deps, md *markup.Renderer, posts *repository.PostRepo, users *repository.UserRepo) {
	blog := &handler.BlogHandler{Posts: posts, Users: users, Markup: md, Site: d.Config.Site}
	pages := &handler.PageHandler{Pages: repository.NewPageRepo(d.DB), Markup: md}
	contact := &handler.ContactHandler{Sender: d.Mailer, Recipient: d.Config.Site.ContactRecipient, Log: d.Log}
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)

	e.GET("/healthz", handler.Health)
	e.GET("/", handler.Home)
	e.GET("/blog", blog.Index)
	e.GET("/blog/post/:id", blog.Show)
	e.GET("/blog/atom", blog.Atom, middleware.NewRedisCache(d.Cache, d.Redis))
	e.GET("/projects", handler.Projects)
	e.GET("/contact", contact.Show)
	e.POST("/contact", contact.Submit, limit)
	e.GET("/:path", pages.Show)
}

// RegisterAuth registers login and logout. POST /login is rate limited.
func RegisterAuth(e *echo.Echo, d Deps) {
	a := handler.NewAuthHandler(d.Sessions)
	e.GET("/login", a.ShowLogin)
	e.POST("/login", a.Login, middleware.NewTokenBucket(d.RateLimit, d.Redis))
	e.GET("/logout", a.Logout)
	e.POST("/logout", a.Logout)
}

// RegisterAdmin mounts the admin panel. Every module is secured with the
// session gate and answers 401 when it is closed.
func RegisterAdmin(e *echo.Echo, d Deps) {
	gate := func(c echo.Context) bool {
		return d.Sessions.RequireAuthenticated(c.Request().Context(), session.From(c))
	}
	actor := func(c echo.Context) uint64 { return session.From(c).UserID }

	a := admin.New(d.Log, actor).
		Secure(http.StatusUnauthorized, gate).
		OnChange(func(ctx context.Context, slug string) {
			if slug != "posts" {
				return
			}
			if err := middleware.PurgeCache(ctx, d.Cache, d.Redis); err != nil {
				d.Log.Warn(ctx, "purge feed cache", "err", err)
			}
		})
	a.Register("posts", "Posts", admin.PostFields, admin.NewPostStore(d.DB)).Secure(http.StatusUnauthorized, gate)
	a.Register("pages", "Pages", admin.PageFields, admin.NewPageStore(d.DB)).Secure(http.StatusUnauthorized, gate)
	a.Mount(e.Group("/admin"))
}
