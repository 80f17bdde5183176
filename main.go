package main

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/codelily98/codelily/controllers"
	"github.com/codelily98/codelily/db"
	"github.com/codelily98/codelily/forms"
	"github.com/codelily98/codelily/kv"
	"github.com/codelily98/codelily/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/requestid"
	"github.com/joho/godotenv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// CORS (Cross-Origin Resource Sharing)
func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Origin, Authorization, Accept, Accept-Encoding")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
		} else {
			c.Next()
		}
	}
}

func SlogMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rlog := logger.With(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"client_ip", c.ClientIP(),
			"request_id", requestid.Get(c),
		)

		start := time.Now()
		rlog.Debug("request started")
		c.Next()
		duration := time.Since(start)
		rlog.Info("request completed", "status", c.Writer.Status(), "duration", duration)
	}
}

// envDuration parses a duration env variable, falling back when unset
func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Error("invalid duration env variable", "key", key, "value", raw)
		os.Exit(1)
	}
	return d
}

func main() {
	// Load the .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			slog.Error("failed to load the env file")
			os.Exit(1)
		}
	}

	var logger *slog.Logger
	if os.Getenv("ENV") == "PRODUCTION" {
		gin.SetMode(gin.ReleaseMode)
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("JWT_SECRET env variable is required")
		os.Exit(1)
	}

	accessTTL := envDuration("ACCESS_TOKEN_TTL", 30*time.Minute)
	refreshTTL := envDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour)

	// Start the default gin server
	r := gin.Default()

	// Custom form validator
	binding.Validator = new(forms.DefaultValidator)

	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "http://localhost:3000"
	}

	r.Use(CORSMiddleware(corsOrigin))
	r.Use(requestid.New(requestid.WithCustomHeaderStrKey("X-Request-Id")))
	r.Use(SlogMiddleware(logger))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	redisDb, err := strconv.ParseInt(os.Getenv("REDIS_DB"), 0, 0)
	if err != nil {
		slog.Error("failed to parse REDIS_DB env variable", "error", err)
		os.Exit(1)
	}
	redisKV, err := kv.NewRedisKV(os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PASS"), int(redisDb))
	if err != nil {
		slog.Error("failed to connect to key-value store", "error", err)
		os.Exit(1)
	}

	database, err := db.NewMongoDB(os.Getenv("MONGO_URI"), os.Getenv("MONGO_DB"))
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	codec := service.NewTokenCodec([]byte(secret), accessTTL, refreshTTL)
	authService := service.NewAuthService(codec, redisKV, database)
	identityService := service.NewIdentityService(database)
	userService := service.NewUserService(database)
	postService := service.NewPostService(database)
	authenticator := service.NewAuthenticator(codec, authService, database)

	// Store-outage policy for the request gate: by default the request
	// proceeds unauthenticated; set AUTH_FAIL_CLOSED=true to reject
	// with 503 instead
	failClosed := os.Getenv("AUTH_FAIL_CLOSED") == "true"
	r.Use(controllers.AuthMiddleware(authenticator, failClosed))

	frontRedirect := os.Getenv("FRONT_REDIRECT")
	if frontRedirect == "" {
		frontRedirect = "http://localhost:3000/auth/callback"
	}

	health := controllers.NewHealthController()
	r.GET("/api/health", health.Health)

	// Without a gateway secret the OAuth2 callback rejects every caller
	gatewaySecret := os.Getenv("OAUTH_GATEWAY_SECRET")
	if gatewaySecret == "" {
		slog.Warn("OAUTH_GATEWAY_SECRET is unset, social login is disabled")
	}

	auth := controllers.NewAuthController(
		authService, identityService,
		frontRedirect,
		gatewaySecret,
		os.Getenv("SECURE_COOKIES") == "true",
		int(refreshTTL.Seconds()),
	)
	r.POST("/api/auth/login", auth.Login)
	r.POST("/api/auth/refresh", auth.Refresh)
	r.POST("/api/auth/logout", auth.Logout)
	r.POST("/api/auth/oauth/:provider/callback", auth.OAuthCallback)

	user := controllers.NewUserController(userService)
	r.POST("/api/auth/register", user.Register)
	r.GET("/api/users/check-nickname", user.CheckNickname)
	r.GET("/api/users/me", controllers.RequireAuth(), user.Me)
	r.PUT("/api/users/me", controllers.RequireAuth(), user.UpdateProfile)
	r.GET("/api/user/:id", user.GetUser)

	post := controllers.NewPostController(postService)
	r.GET("/api/posts", post.List)
	r.GET("/api/posts/top", post.Top)
	r.POST("/api/posts", controllers.RequireAuth(), post.Create)
	r.GET("/api/post/:slug", post.One)
	r.PUT("/api/post/:slug", controllers.RequireAuth(), post.Update)
	r.DELETE("/api/post/:slug", controllers.RequireAuth(), post.Delete)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("server starting", "port", port, "env", os.Getenv("ENV"), "fail_closed", failClosed)

	if os.Getenv("SSL") == "TRUE" {
		r.RunTLS(":"+port, os.Getenv("SSL_CERT"), os.Getenv("SSL_KEY"))
	} else {
		r.Run(":" + port)
	}
}
