package server

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/ethioshop/ethioshop-backend/internal/chapa"
	"github.com/ethioshop/ethioshop-backend/internal/config"
	"github.com/ethioshop/ethioshop-backend/internal/handler"
	appmw "github.com/ethioshop/ethioshop-backend/internal/middleware"
	"github.com/ethioshop/ethioshop-backend/internal/push"
	"github.com/ethioshop/ethioshop-backend/internal/repository"
	"github.com/ethioshop/ethioshop-backend/internal/service"
	"github.com/ethioshop/ethioshop-backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

type Server struct {
	e     *echo.Echo
	repos []interface{ SetDB(*gorm.DB) }
	sha   string
	build string
}

func New(db *gorm.DB, cfg *config.Config, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			return u.Scheme == "http" || u.Scheme == "https", nil
		},
	}))

	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	convRepo := repository.NewConversationRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	refRepo := repository.NewReferenceRepository(db)

	gateway := chapa.NewClient(cfg.ChapaSecretKey, cfg.ChapaBaseURL, nil)

	var sender push.Sender = push.Disabled{}
	if cfg.FirebaseProjectID != "" {
		if s, err := push.NewFCMSender(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile); err != nil {
			log.Printf("push sender disabled: %v", err)
		} else {
			sender = s
		}
	}

	var uploader *storage.Uploader
	if cfg.StorageBucket != "" {
		var opts []option.ClientOption
		if cfg.FirebaseCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
		}
		if gcsClient, err := gcs.NewClient(ctx, opts...); err != nil {
			log.Printf("storage uploader disabled: %v", err)
		} else if up, err := storage.NewUploader(gcsClient, cfg.StorageBucket); err != nil {
			log.Printf("storage uploader disabled: %v", err)
		} else {
			uploader = up
		}
	}

	shippingFlat, err := decimal.NewFromString(cfg.ShippingFlatETB)
	if err != nil {
		log.Printf("invalid SHIPPING_FLAT_ETB %q, defaulting to 100: %v", cfg.ShippingFlatETB, err)
		shippingFlat = decimal.NewFromInt(100)
	}

	notifSvc := service.NewNotificationService(notifRepo, userRepo, sender)
	userSvc := service.NewUserService(userRepo)
	productSvc := service.NewProductService(productRepo)
	escrowSvc := service.NewEscrowService(orderRepo, paymentRepo, userRepo, gateway, notifSvc)
	orderSvc := service.NewOrderService(orderRepo, productRepo, userRepo, escrowSvc, notifSvc, shippingFlat)
	paymentSvc := service.NewPaymentService(orderRepo, paymentRepo, gateway, notifSvc, cfg.PaymentCallbackURL, cfg.PaymentReturnURL)
	convSvc := service.NewConversationService(convRepo, productRepo, notifSvc)
	reviewSvc := service.NewReviewService(reviewRepo, orderRepo, notifSvc)

	productHandler := handler.NewProductHandler(productSvc, uploader)
	orderHandler := handler.NewOrderHandler(orderSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, cfg.ChapaWebhookSecret)
	convHandler := handler.NewConversationHandler(convSvc)
	notifHandler := handler.NewNotificationHandler(notifSvc)
	reviewHandler := handler.NewReviewHandler(reviewSvc)
	seedHandler := handler.NewSeedHandler(refRepo, cfg.SeedSecret)

	authMw, err := appmw.NewAuthMiddleware(ctx)
	if err != nil {
		e.Logger.Fatalf("failed to init firebase auth: %v", err)
	}
	userHandler := handler.NewUserHandler(userSvc, authMw.Client())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	// Chapa posts here; authenticated by HMAC signature, not Firebase.
	e.POST("/payment-webhook", paymentHandler.Webhook)
	e.POST("/seed", seedHandler.Seed)

	api := e.Group("/api")

	api.GET("/categories", seedHandler.ListCategories)
	api.GET("/locations", seedHandler.ListLocations)
	api.GET("/products", productHandler.List)
	api.GET("/products/:id", productHandler.Get)
	api.GET("/products/:id/reviews", reviewHandler.ListByProduct)
	api.GET("/users/:uid/public", userHandler.GetPublic)

	api.POST("/products", productHandler.Create, authMw.RequireAuth)
	api.PUT("/products/:id", productHandler.Update, authMw.RequireAuth)
	api.POST("/products/:id/images", productHandler.UploadImage, authMw.RequireAuth)
	api.GET("/me/products", productHandler.ListMine, authMw.RequireAuth)
	api.POST("/products/:id/conversations", convHandler.CreateFromProduct, authMw.RequireAuth)

	api.POST("/orders", orderHandler.Create, authMw.RequireAuth)
	api.GET("/orders/:id", orderHandler.Get, authMw.RequireAuth)
	api.GET("/me/orders", orderHandler.ListMine, authMw.RequireAuth)
	api.GET("/me/sales", orderHandler.ListSales, authMw.RequireAuth)
	api.POST("/orders/:id/pay", paymentHandler.CreateSession, authMw.RequireAuth)
	api.POST("/orders/:id/ship", orderHandler.MarkShipped, authMw.RequireAuth)
	api.POST("/orders/:id/receive", orderHandler.MarkDelivered, authMw.RequireAuth)
	api.POST("/orders/:id/cancel", orderHandler.Cancel, authMw.RequireAuth)
	api.POST("/orders/:id/review", reviewHandler.Create, authMw.RequireAuth)

	api.GET("/conversations", convHandler.List, authMw.RequireAuth)
	api.GET("/conversations/:id", convHandler.Get, authMw.RequireAuth)
	api.GET("/conversations/:id/messages", convHandler.ListMessages, authMw.RequireAuth)
	api.POST("/conversations/:id/messages", convHandler.CreateMessage, authMw.RequireAuth)

	api.GET("/notifications", notifHandler.List, authMw.RequireAuth)
	api.POST("/notifications/read", notifHandler.MarkAllRead, authMw.RequireAuth)
	api.POST("/notifications/push", notifHandler.SendPush, authMw.RequireAuth)

	api.PUT("/me", userHandler.UpdateMe, authMw.RequireAuth)
	api.POST("/me/fcm-token", userHandler.RegisterFCMToken, authMw.RequireAuth)

	return &Server{
		e: e,
		repos: []interface{ SetDB(*gorm.DB) }{
			userRepo, productRepo, orderRepo, paymentRepo,
			convRepo, notifRepo, reviewRepo, refRepo,
		},
		sha:   sha,
		build: buildTime,
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// SetDB injects the database into every repository once the connection is up.
// The server can accept traffic before that; repositories answer ErrDBNotReady
// until then.
func (s *Server) SetDB(db *gorm.DB) {
	for _, r := range s.repos {
		r.SetDB(db)
	}
}
