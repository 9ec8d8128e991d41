package http

import (
	"context"
	"log/slog"

	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/imaging"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Accounts is everything the user routes and the auth middleware need.
type Accounts interface {
	handlers.AccountService
	middlewares.Authenticator
}

// avatarBodyBytes leaves room for the multipart envelope around a file at
// the upload cap; anything larger never reaches the handler.
const avatarBodyBytes = imaging.MaxUploadBytes + 64<<10

type RouterDeps struct {
	Log      *slog.Logger
	Env      string
	Accounts Accounts
	Tasks    handlers.TaskStore
	// Ping backs /readyz; nil means always ready.
	Ping func(ctx context.Context) error
	// Prom is optional; without it /metrics is not mounted.
	Prom *observability.Prom

	ServiceName    string
	AllowedOrigins []string
	MaxBodyBytes   int64
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.ServiceName == "" {
		d.ServiceName = "taskhub-api"
	}
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = 2 << 20
	}

	handlers.RegisterValidators()

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(d.ServiceName))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(d.MaxBodyBytes, middlewares.BodyLimits{
		"POST /users/me/avatar": avatarBodyBytes,
	}))

	// health
	health := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Prom != nil {
		r.GET("/metrics", gin.WrapH(d.Prom.Handler()))
	}

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	users := handlers.NewUsersHandler(d.Accounts)
	tasks := handlers.NewTasksHandler(d.Tasks)
	requireAuth := middlewares.NewAuthMiddleware(d.Accounts).RequireAuth()
	requireJSON := middlewares.RequireJSON()

	// public
	r.POST("/users", requireJSON, users.SignUp)
	r.POST("/users/login", requireJSON, users.Login)
	r.GET("/users/:id/avatar", users.GetAvatar)

	authed := r.Group("/")
	authed.Use(requireAuth)
	{
		authed.POST("/users/logout", users.Logout)
		authed.POST("/users/logoutAll", users.LogoutAll)
		authed.GET("/users/me", users.Me)
		authed.PATCH("/users/me", requireJSON, users.UpdateMe)
		authed.DELETE("/users/me", users.DeleteMe)

		authed.POST("/users/me/avatar", users.UploadAvatar)
		authed.DELETE("/users/me/avatar", users.DeleteAvatar)

		authed.POST("/tasks", requireJSON, tasks.CreateTask)
		authed.GET("/tasks", tasks.ListTasks)
		authed.GET("/tasks/:id", tasks.GetTask)
		authed.PATCH("/tasks/:id", requireJSON, tasks.UpdateTask)
		authed.DELETE("/tasks/:id", tasks.DeleteTask)
	}

	return r
}
