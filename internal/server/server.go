package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Rosario027/finalerp/internal/audit"
	auditdomain "github.com/Rosario027/finalerp/internal/audit/domain"
	"github.com/Rosario027/finalerp/internal/auth"
	authdomain "github.com/Rosario027/finalerp/internal/auth/domain"
	"github.com/Rosario027/finalerp/internal/authorization"
	"github.com/Rosario027/finalerp/internal/config"
	"github.com/Rosario027/finalerp/internal/expense"
	expensedomain "github.com/Rosario027/finalerp/internal/expense/domain"
	"github.com/Rosario027/finalerp/internal/invoice"
	invoicedomain "github.com/Rosario027/finalerp/internal/invoice/domain"
	"github.com/Rosario027/finalerp/internal/observability"
	obsmiddleware "github.com/Rosario027/finalerp/internal/observability/logger"
	obsmetrics "github.com/Rosario027/finalerp/internal/observability/metrics"
	obstracing "github.com/Rosario027/finalerp/internal/observability/tracing"
	"github.com/Rosario027/finalerp/internal/product"
	productdomain "github.com/Rosario027/finalerp/internal/product/domain"
	"github.com/Rosario027/finalerp/internal/providers"
	"github.com/Rosario027/finalerp/internal/ratelimit"
	"github.com/Rosario027/finalerp/internal/report"
	reportdomain "github.com/Rosario027/finalerp/internal/report/domain"
	"github.com/Rosario027/finalerp/internal/setting"
	settingdomain "github.com/Rosario027/finalerp/internal/setting/domain"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	ratelimit.Module,
	authorization.Module,
	audit.Module,
	auth.Module,
	setting.Module,
	product.Module,
	providers.Module,
	invoice.Module,
	expense.Module,
	report.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg)))
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func corsConfig(cfg config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-Id")
	corsCfg.ExposeHeaders = []string{"Content-Disposition", "X-Request-Id"}
	if len(cfg.CORSOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	return corsCfg
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, s *Server) {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	authSvc    authdomain.Service
	authzSvc   authorization.Service
	auditSvc   auditdomain.Service
	settingSvc settingdomain.Service
	productSvc productdomain.Service
	invoiceSvc invoicedomain.Service
	expenseSvc expensedomain.Service
	reportSvc  reportdomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	AuthSvc    authdomain.Service
	AuthzSvc   authorization.Service
	AuditSvc   auditdomain.Service
	SettingSvc settingdomain.Service
	ProductSvc productdomain.Service
	InvoiceSvc invoicedomain.Service
	ExpenseSvc expensedomain.Service
	ReportSvc  reportdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("http.server"),
		authSvc:    p.AuthSvc,
		authzSvc:   p.AuthzSvc,
		auditSvc:   p.AuditSvc,
		settingSvc: p.SettingSvc,
		productSvc: p.ProductSvc,
		invoiceSvc: p.InvoiceSvc,
		expenseSvc: p.ExpenseSvc,
		reportSvc:  p.ReportSvc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/auth/login", s.Login)

	authed := api.Group("", s.AuthRequired())
	authed.GET("/auth/me", s.Me)

	// -------- Products --------
	authed.GET("/products", s.authorize(authorization.ObjectProduct, authorization.ActionView), s.ListProducts)
	authed.POST("/products", s.authorize(authorization.ObjectProduct, authorization.ActionCreate), s.CreateProduct)
	authed.GET("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionView), s.GetProductByID)
	authed.PATCH("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionUpdate), s.UpdateProduct)
	authed.DELETE("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionDelete), s.DeleteProduct)

	// -------- Invoices --------
	authed.GET("/invoices/next-number", s.authorize(authorization.ObjectInvoice, authorization.ActionCreate), s.NextInvoiceNumber)
	authed.GET("/invoices", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.ListInvoices)
	authed.POST("/invoices", s.authorize(authorization.ObjectInvoice, authorization.ActionCreate), s.CreateInvoice)
	authed.GET("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.GetInvoiceByID)
	authed.PATCH("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionUpdate), s.EditInvoice)
	authed.DELETE("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionDelete), s.DeleteInvoice)
	authed.GET("/invoices/:id/pdf", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.PrintInvoice)
	authed.GET("/invoices/:id/receipt", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.PrintReceipt)

	// -------- Expenses --------
	authed.GET("/expenses", s.authorize(authorization.ObjectExpense, authorization.ActionView), s.ListExpenses)
	authed.POST("/expenses", s.authorize(authorization.ObjectExpense, authorization.ActionCreate), s.CreateExpense)
	authed.PATCH("/expenses/:id", s.authorize(authorization.ObjectExpense, authorization.ActionUpdate), s.UpdateExpense)
	authed.DELETE("/expenses/:id", s.authorize(authorization.ObjectExpense, authorization.ActionDelete), s.DeleteExpense)

	// -------- Settings --------
	authed.GET("/settings", s.authorize(authorization.ObjectSetting, authorization.ActionView), s.ListSettings)
	authed.GET("/settings/:key", s.authorize(authorization.ObjectSetting, authorization.ActionView), s.GetSetting)
	authed.PUT("/settings/:key", s.authorize(authorization.ObjectSetting, authorization.ActionUpdate), s.SetSetting)

	// -------- Reports --------
	authed.GET("/admin/stats", s.authorize(authorization.ObjectReport, authorization.ActionView), s.GetStats)
	authed.GET("/reports/sales", s.authorize(authorization.ObjectReport, authorization.ActionView), s.GetSalesReport)
	authed.GET("/reports/sales/export", s.authorize(authorization.ObjectReport, authorization.ActionExport), s.ExportSalesReport)
	authed.GET("/reports/stock", s.authorize(authorization.ObjectReport, authorization.ActionView), s.GetStockReport)

	// -------- Users --------
	authed.GET("/users", s.authorize(authorization.ObjectUser, authorization.ActionView), s.ListUsers)
	authed.POST("/users", s.authorize(authorization.ObjectUser, authorization.ActionCreate), s.CreateUser)
	authed.PATCH("/users/:id", s.authorize(authorization.ObjectUser, authorization.ActionUpdate), s.UpdateUser)
	authed.DELETE("/users/:id", s.authorize(authorization.ObjectUser, authorization.ActionDelete), s.DeleteUser)

	authed.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionView), s.ListAuditLogs)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
