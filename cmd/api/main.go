package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tooltrack/internal/config"
	"tooltrack/internal/handler"
	"tooltrack/internal/logger"
	"tooltrack/internal/middleware"
	"tooltrack/internal/model"
	"tooltrack/internal/repository"
	"tooltrack/internal/service"
	"tooltrack/internal/ws"
	"tooltrack/pkg/database"
	"tooltrack/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog := logger.Must(cfg.Env)
	defer zlog.Sync()

	policy, err := service.ParseQuantityPolicy(cfg.QuantityPolicy)
	if err != nil {
		zlog.Fatal("invalid INVOICE_QUANTITY_POLICY", zap.Error(err))
	}

	// 2. Setup Database
	db, err := database.Open(database.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL})
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db, cfg.DBDriver, cfg.DBAutoMigrate, zlog); err != nil {
		zlog.Fatal("database migration failed", zap.Error(err))
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(zlog)
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db, cfg.LowStockThreshold)
	mappingRepo := repository.NewSupplierCodeRepo(db)
	ledgerRepo := repository.NewLedgerRepo(db)
	loanRepo := repository.NewLoanRepo(db)
	damageRepo := repository.NewDamageRepo(db)
	employeeRepo := repository.NewEmployeeRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	tokens := jwt.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)

	resolver := service.NewCodeResolver(db, productRepo, mappingRepo, zlog)
	ledger := service.NewLedgerService(db, productRepo, ledgerRepo, wsHub)
	auditService := service.NewAuditService(db, resolver, ledger, wsHub, zlog)
	invoiceService := service.NewInvoiceService(db, resolver, ledger, productRepo, mappingRepo, policy, wsHub, zlog)
	mappingService := service.NewMappingService(db, mappingRepo, productRepo, zlog)
	loanService := service.NewLoanService(db, resolver, ledger, productRepo, employeeRepo, loanRepo, wsHub, zlog)
	damageService := service.NewDamageService(db, ledger, damageRepo, wsHub, zlog)
	invService := service.NewInventoryService(db, ledger, productRepo, mappingRepo, wsHub, zlog)
	employeeService := service.NewEmployeeService(employeeRepo, loanRepo)
	dashService := service.NewDashboardService(ledgerRepo, cfg.LowStockThreshold)
	authService := service.NewAuthService(userRepo, roleRepo, privilegeRepo, tokens, wsHub, zlog)

	// 5. Seed default privileges, roles, and the first operator
	seedCtx := service.WithActor(context.Background(), service.Actor{Name: cfg.DefaultActor})
	if err := authService.EnsureAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		zlog.Fatal("seeding operators failed", zap.Error(err))
	}

	productHandler := handler.NewProductHandler(invService, mappingService, ledger)
	mappingHandler := handler.NewMappingHandler(mappingService)
	auditHandler := handler.NewAuditHandler(auditService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	loanHandler := handler.NewLoanHandler(loanService)
	damageHandler := handler.NewDamageHandler(damageService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	dashHandler := handler.NewDashboardHandler(dashService, ledger)
	authHandler := handler.NewAuthHandler(authService)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   "ToolTrack v1.0",
		BodyLimit: 20 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(zlog))
	app.Use(middleware.DefaultActor(cfg.DefaultActor))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.ReplaceAll(cfg.CORSOrigins, " ", ""),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// 7. Routes
	api := app.Group("/api/v1")
	requireAuth := middleware.RequireAuth(authService)
	can := middleware.RequirePrivilege

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", requireAuth, authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	// Dashboard & history
	protected.Get("/dashboard/stats", can(model.PrivDashboardView), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", can(model.PrivDashboardView), dashHandler.GetStockMovement)
	protected.Get("/history", can(model.PrivHistoryView), dashHandler.GetHistory)

	// Products (static paths before :id)
	protected.Get("/products", can(model.PrivProductView), productHandler.GetProducts)
	protected.Get("/products/export", can(model.PrivProductView), productHandler.Export)
	protected.Post("/products/import", can(model.PrivProductManage), productHandler.Import)
	protected.Post("/products/bulk-delete", can(model.PrivProductManage), productHandler.BulkDelete)
	protected.Post("/products", can(model.PrivProductManage), productHandler.CreateProduct)
	protected.Get("/products/:id", can(model.PrivProductView), productHandler.GetProduct)
	protected.Put("/products/:id", can(model.PrivProductManage), productHandler.UpdateProduct)
	protected.Delete("/products/:id", can(model.PrivProductManage), productHandler.DeleteProduct)
	protected.Post("/products/:id/toggle-category", can(model.PrivProductManage), productHandler.ToggleCategory)
	protected.Post("/products/:id/adjust", can(model.PrivInventoryAdj), productHandler.AdjustStock)
	protected.Get("/products/:id/codes", can(model.PrivProductView), productHandler.GetCodes)

	// Supplier codes
	protected.Post("/codes", can(model.PrivMappingManage), mappingHandler.CreateMapping)
	protected.Put("/codes/:id", can(model.PrivMappingManage), mappingHandler.UpdateCode)
	protected.Put("/codes/:id/product", can(model.PrivMappingManage), mappingHandler.Reassign)
	protected.Delete("/codes/:id", can(model.PrivMappingManage), mappingHandler.DeleteMapping)

	// Bulk audit
	protected.Post("/audit/preview", can(model.PrivInventoryAdj), auditHandler.Preview)
	protected.Post("/audit/confirm", can(model.PrivInventoryAdj), auditHandler.Confirm)

	// Invoices
	protected.Post("/invoices/import", can(model.PrivInvoiceImport), invoiceHandler.Import)
	protected.Post("/invoices/import-xml", can(model.PrivInvoiceImport), invoiceHandler.ImportXML)
	protected.Post("/invoices/resolve", can(model.PrivInvoiceImport), invoiceHandler.Resolve)

	// Loans & damages
	protected.Get("/loans", can(model.PrivLoanManage), loanHandler.GetLoans)
	protected.Post("/loans", can(model.PrivLoanManage), loanHandler.Checkout)
	protected.Post("/loans/:id/return", can(model.PrivLoanManage), loanHandler.Return)
	protected.Get("/damages", can(model.PrivHistoryView), damageHandler.GetDamages)
	protected.Post("/damages", can(model.PrivInventoryAdj), damageHandler.Report)

	// Employees
	protected.Get("/employees", can(model.PrivLoanManage), employeeHandler.GetEmployees)
	protected.Get("/employees/:id", can(model.PrivLoanManage), employeeHandler.GetEmployee)
	protected.Post("/employees", can(model.PrivEmployeeManage), employeeHandler.CreateEmployee)
	protected.Put("/employees/:id", can(model.PrivEmployeeManage), employeeHandler.UpdateEmployee)
	protected.Delete("/employees/:id", can(model.PrivEmployeeManage), employeeHandler.DeleteEmployee)

	// Roles & privileges
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(c) {
			return
		}
		defer wsHub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		zlog.Info("listening", zap.String("port", cfg.Port), zap.String("driver", cfg.DBDriver))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Panic("listen failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}
	wsHub.Stop()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	zlog.Info("Server exited")
}
