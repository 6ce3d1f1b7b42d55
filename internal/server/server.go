package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"anoa.com/newsportal/internal/bootstrap"
	"anoa.com/newsportal/internal/config"
	"anoa.com/newsportal/internal/middleware"
	"anoa.com/newsportal/internal/observability"
	"anoa.com/newsportal/internal/rbac"
	"anoa.com/newsportal/pkg/storage"

	categoryHttp "anoa.com/newsportal/internal/modules/category/delivery/http"
	categoryRepo "anoa.com/newsportal/internal/modules/category/repository"
	categoryService "anoa.com/newsportal/internal/modules/category/service"

	commentHttp "anoa.com/newsportal/internal/modules/comment/delivery/http"
	commentRepo "anoa.com/newsportal/internal/modules/comment/repository"
	commentService "anoa.com/newsportal/internal/modules/comment/service"

	likeHttp "anoa.com/newsportal/internal/modules/like/delivery/http"
	likeRepo "anoa.com/newsportal/internal/modules/like/repository"
	likeService "anoa.com/newsportal/internal/modules/like/service"

	newsHttp "anoa.com/newsportal/internal/modules/news/delivery/http"
	newsRepo "anoa.com/newsportal/internal/modules/news/repository"
	newsService "anoa.com/newsportal/internal/modules/news/service"

	sponsorHttp "anoa.com/newsportal/internal/modules/sponsor/delivery/http"
	sponsorRepo "anoa.com/newsportal/internal/modules/sponsor/repository"
	sponsorService "anoa.com/newsportal/internal/modules/sponsor/service"

	statHttp "anoa.com/newsportal/internal/modules/stat/delivery/http"
	statRepo "anoa.com/newsportal/internal/modules/stat/repository"
	statService "anoa.com/newsportal/internal/modules/stat/service"

	userHttp "anoa.com/newsportal/internal/modules/user/delivery/http"
	userRepo "anoa.com/newsportal/internal/modules/user/repository"
	userService "anoa.com/newsportal/internal/modules/user/service"

	viewService "anoa.com/newsportal/internal/modules/view/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Options carries the infrastructure the server is built on. Redis may be
// nil, which disables caching, view dedupe and comment cooldowns.
type Options struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Storage  storage.MediaStorage
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

type Server struct {
	engine *gin.Engine
	cfg    *config.Config
	log    zerolog.Logger

	userRepo userRepo.UserRepository
	users    userService.UserService
}

func NewServer(opts Options) *Server {
	cfg := opts.Config
	log := opts.Log

	mediaStorage := opts.Storage
	if mediaStorage == nil {
		mediaStorage = storage.Disabled{}
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := observability.NewMetrics(registry)
	policy := rbac.DefaultPolicy()

	// Users and roles
	usersRepo := userRepo.NewUserRepository(opts.DB)
	reconciler := rbac.NewReconciler(userRepo.NewMembershipStore(opts.DB), log, roleChangeLogger(log), metrics)
	userSvc := userService.NewUserService(usersRepo, reconciler, log)
	tokenSvc := userService.NewTokenService(usersRepo, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userHandler := userHttp.NewUserHandler(userSvc, tokenSvc)

	categoriesRepo := categoryRepo.NewCategoryRepository(opts.DB)
	categorySvc := categoryService.NewCategoryService(categoriesRepo)
	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc)

	sponsorsRepo := sponsorRepo.NewSponsorRepository(opts.DB)
	sponsorSvc := sponsorService.NewSponsorService(sponsorsRepo, mediaStorage, log)
	sponsorHandler := sponsorHttp.NewSponsorHandler(sponsorSvc)

	// News and its engagement
	articlesRepo := newsRepo.NewNewsRepository(opts.DB)
	likeSvc := likeService.NewLikeService(likeRepo.NewLikeRepository(opts.DB), articlesRepo, opts.Redis, metrics, log)
	likeHandler := likeHttp.NewLikeHandler(likeSvc)

	viewSvc := viewService.NewViewService(opts.Redis, articlesRepo, cfg.ViewDedupeWindow, log)

	newsSvc := newsService.NewNewsService(articlesRepo, categoriesRepo, sponsorsRepo, likeSvc, viewSvc, mediaStorage, log)
	newsHandler := newsHttp.NewNewsHandler(newsSvc)

	commentSvc := commentService.NewCommentService(commentRepo.NewCommentRepository(opts.DB), articlesRepo, policy, opts.Redis, cfg.RateLimitComment, log)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	statSvc := statService.NewStatService(statRepo.NewStatRepository(opts.DB))
	statHandler := statHttp.NewStatHandler(statSvc, newsSvc)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(metrics.GinMiddleware())

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.NewAuthMiddleware(tokenSvc, userSvc, policy)

	api := router.Group("")
	api.Use(auth.Authenticate())

	// Tokens
	api.POST("/token/", userHandler.ObtainToken)
	api.POST("/token/refresh/", userHandler.RefreshToken)

	// Accounts and membership
	users := api.Group("/users")
	{
		users.POST("/register/", auth.Authorize(rbac.ActionRegister, rbac.ResourceAccount), userHandler.Register)
		users.POST("/admin/create/", auth.Authorize(rbac.ActionCreate, rbac.ResourceAccount), userHandler.CreateAccount)
		users.GET("/me/", auth.Authorize(rbac.ActionRetrieve, rbac.ResourceAccount), userHandler.Me)

		manage := auth.Authorize(rbac.ActionManage, rbac.ResourceMembership)
		users.POST("/:id/groups/", manage, userHandler.AddToGroup)
		users.DELETE("/:id/groups/", manage, userHandler.ClearGroups)
		users.DELETE("/:id/groups/:group/", manage, userHandler.RemoveFromGroup)
		users.PUT("/:id/role/", manage, userHandler.AssignRole)
	}

	news := api.Group("/news")
	{
		news.GET("/", auth.Authorize(rbac.ActionList, rbac.ResourceNews), newsHandler.GetAllNews)
		news.GET("/trending/", auth.Authorize(rbac.ActionList, rbac.ResourceNews), statHandler.GetTrendingNews)
		news.POST("/", auth.Authorize(rbac.ActionCreate, rbac.ResourceNews), newsHandler.CreateNews)
		news.GET("/:id/", auth.Authorize(rbac.ActionRetrieve, rbac.ResourceNews), newsHandler.GetNews)
		news.PUT("/:id/", auth.Authorize(rbac.ActionUpdate, rbac.ResourceNews), newsHandler.ReplaceNews)
		news.PATCH("/:id/", auth.Authorize(rbac.ActionUpdate, rbac.ResourceNews), newsHandler.PatchNews)
		news.DELETE("/:id/", auth.Authorize(rbac.ActionDelete, rbac.ResourceNews), newsHandler.DeleteNews)

		news.POST("/:id/like/", auth.Authorize(rbac.ActionToggle, rbac.ResourceLike), likeHandler.ToggleLike)

		news.POST("/:id/images/", auth.Authorize(rbac.ActionCreate, rbac.ResourceNewsImage), newsHandler.UploadImage)
		news.DELETE("/:id/images/:image_id/", auth.Authorize(rbac.ActionDelete, rbac.ResourceNewsImage), newsHandler.DeleteImage)
	}

	categories := api.Group("/categories")
	{
		categories.GET("/", auth.Authorize(rbac.ActionList, rbac.ResourceCategory), categoryHandler.GetAllCategories)
		categories.POST("/", auth.Authorize(rbac.ActionCreate, rbac.ResourceCategory), categoryHandler.CreateCategory)
		categories.GET("/:id/", auth.Authorize(rbac.ActionRetrieve, rbac.ResourceCategory), categoryHandler.GetCategory)
		categories.PUT("/:id/", auth.Authorize(rbac.ActionUpdate, rbac.ResourceCategory), categoryHandler.ReplaceCategory)
		categories.PATCH("/:id/", auth.Authorize(rbac.ActionUpdate, rbac.ResourceCategory), categoryHandler.PatchCategory)
		categories.DELETE("/:id/", auth.Authorize(rbac.ActionDelete, rbac.ResourceCategory), categoryHandler.DeleteCategory)
	}

	// Ownership of a comment is checked by the service once it is loaded.
	comments := api.Group("/comments")
	{
		comments.GET("/", auth.Authorize(rbac.ActionList, rbac.ResourceComment), commentHandler.GetAllComments)
		comments.POST("/", auth.Authorize(rbac.ActionCreate, rbac.ResourceComment), commentHandler.CreateComment)
		comments.GET("/:id/", auth.Authorize(rbac.ActionRetrieve, rbac.ResourceComment), commentHandler.GetComment)
		comments.PUT("/:id/", auth.Authorize(rbac.ActionUpdate, rbac.ResourceComment), commentHandler.ReplaceComment)
		comments.PATCH("/:id/", auth.Authorize(rbac.ActionUpdate, rbac.ResourceComment), commentHandler.PatchComment)
		comments.DELETE("/:id/", auth.Authorize(rbac.ActionDelete, rbac.ResourceComment), commentHandler.DeleteComment)
	}

	sponsors := api.Group("/sponsors")
	{
		sponsors.GET("/", auth.Authorize(rbac.ActionList, rbac.ResourceSponsor), sponsorHandler.ListSponsors)
		sponsors.GET("/active/", auth.Authorize(rbac.ActionList, rbac.ResourceSponsor), sponsorHandler.ListActiveSponsors)
		sponsors.POST("/", auth.Authorize(rbac.ActionCreate, rbac.ResourceSponsor), sponsorHandler.CreateSponsor)
		sponsors.GET("/:id/", auth.Authorize(rbac.ActionRetrieve, rbac.ResourceSponsor), sponsorHandler.GetSponsor)
		sponsors.PUT("/:id/", auth.Authorize(rbac.ActionUpdate, rbac.ResourceSponsor), sponsorHandler.ReplaceSponsor)
		sponsors.PATCH("/:id/", auth.Authorize(rbac.ActionUpdate, rbac.ResourceSponsor), sponsorHandler.PatchSponsor)
		sponsors.DELETE("/:id/", auth.Authorize(rbac.ActionDelete, rbac.ResourceSponsor), sponsorHandler.DeleteSponsor)
	}

	api.GET("/stats/", auth.Authorize(rbac.ActionRetrieve, rbac.ResourceStats), statHandler.GetPortalStats)

	return &Server{
		engine:   router,
		cfg:      cfg,
		log:      log,
		userRepo: usersRepo,
		users:    userSvc,
	}
}

// Bootstrap seeds the role groups and, when SEED_ADMIN_PASSWORD is set, the
// admin account.
func (s *Server) Bootstrap(ctx context.Context) error {
	if err := bootstrap.SeedGroups(ctx, s.userRepo); err != nil {
		return err
	}
	return bootstrap.SeedAdminUser(ctx, s.userRepo, s.users, s.cfg.SeedAdminEmail, s.cfg.SeedAdminPassword, s.log)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled and then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.log.Info().Msg("shutting down server")
	return srv.Shutdown(shutdownCtx)
}

func roleChangeLogger(log zerolog.Logger) rbac.Notifier {
	return func(_ context.Context, change rbac.Change) {
		log.Info().
			Str("user_id", change.UserID.String()).
			Str("from", change.From.String()).
			Str("to", change.To.String()).
			Str("trigger", string(change.Trigger)).
			Msg("role changed")
	}
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
