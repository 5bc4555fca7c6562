package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KarlovS28/dela/internal"
	"github.com/KarlovS28/dela/internal/audit"
	auditpg "github.com/KarlovS28/dela/internal/audit/postgres"
	"github.com/KarlovS28/dela/internal/auth"
	authpg "github.com/KarlovS28/dela/internal/auth/postgres"
	"github.com/KarlovS28/dela/internal/core/events"
	"github.com/KarlovS28/dela/internal/department"
	departmentpg "github.com/KarlovS28/dela/internal/department/postgres"
	"github.com/KarlovS28/dela/internal/employee"
	employeepg "github.com/KarlovS28/dela/internal/employee/postgres"
	"github.com/KarlovS28/dela/internal/equipment"
	equipmentpg "github.com/KarlovS28/dela/internal/equipment/postgres"
	"github.com/KarlovS28/dela/internal/notification"
	notificationpg "github.com/KarlovS28/dela/internal/notification/postgres"
	"github.com/KarlovS28/dela/internal/rbac"
	rbacpg "github.com/KarlovS28/dela/internal/rbac/postgres"
	"github.com/KarlovS28/dela/internal/registration"
	registrationpg "github.com/KarlovS28/dela/internal/registration/postgres"
	"github.com/KarlovS28/dela/internal/transport"
	"github.com/KarlovS28/dela/internal/transport/rest"
	"github.com/KarlovS28/dela/internal/transport/swagger"
	"github.com/KarlovS28/dela/internal/user"
	userpg "github.com/KarlovS28/dela/internal/user/postgres"
	"github.com/KarlovS28/dela/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	wireHandlers(deps)

	if err := swagger.ValidateSpec(context.Background(), "./api/openapi.yml"); err != nil {
		slog.Warn("openapi spec validation failed, swagger UI may be broken", "error", err)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

// wireHandlers builds repositories, services and handlers and mounts the
// router. Construction order follows the dependency graph: audit first,
// everything else on top of it.
func wireHandlers(deps *Dependencies) {
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)
	bus := events.NewEventBus(lg)

	auditRepo := auditpg.NewAuditRepository(deps.GormDB)
	auditService := audit.NewService(auditRepo, lg)
	auditHandler := audit.NewHandler(base, auditService)

	authRepo := authpg.NewRepository(deps.GormDB)
	tokenGen := auth.NewJWTTokenGenerator(deps.Config.Security)
	authService := auth.NewService(authRepo, tokenGen, deps.Config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	rbacRepo := rbacpg.NewRBACRepository(deps.GormDB)
	rbacService := rbac.NewService(rbacRepo, auditService, lg)
	rbacHandler := rbac.NewHandler(base, rbacService)

	employeeRepo := employeepg.NewEmployeeRepository(deps.GormDB)
	employeeService := employee.NewService(employeeRepo, auditService, lg)
	employeeHandler := employee.NewHandler(base, employeeService)

	equipmentRepo := equipmentpg.NewEquipmentRepository(deps.GormDB)
	equipmentService := equipment.NewService(equipmentRepo, employeeService, auditService, bus, lg)
	equipmentHandler := equipment.NewHandler(base, equipmentService)

	departmentRepo := departmentpg.NewDepartmentRepository(deps.GormDB)
	departmentService := department.NewService(departmentRepo, auditService, lg)
	departmentHandler := department.NewHandler(base, departmentService)

	userRepo := userpg.NewUserRepository(deps.GormDB)
	userService := user.NewService(userRepo, rbacRepo, authService, auditService, lg)
	userHandler := user.NewHandler(base, userService)

	registrationRepo := registrationpg.NewRegistrationRepository(deps.GormDB)
	registrationService := registration.NewService(
		registrationRepo,
		userRepo,
		rbacRepo,
		authService,
		auditService,
		bus,
		deps.Config.Security.DefaultRoleName,
		lg,
	)
	registrationHandler := registration.NewHandler(base, registrationService)

	notificationRepo := notificationpg.NewNotificationRepository(deps.GormDB)
	notificationService := notification.NewService(notificationRepo, lg)
	notificationService.SubscribeToEvents(bus)
	notificationHandler := notification.NewHandler(base, notificationService)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, rest.Handlers{
		Auth:         authHandler,
		User:         userHandler,
		RBAC:         rbacHandler,
		Employee:     employeeHandler,
		Equipment:    equipmentHandler,
		Department:   departmentHandler,
		Audit:        auditHandler,
		Registration: registrationHandler,
		Notification: notificationHandler,
	}, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	env := "development"
	if config.Observability.Logging.Format == "json" {
		env = "production"
	}
	logger.Init(env)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB opens the plain connection used by health checks.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm opens the ORM connection the repositories use.
func initGorm(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	gormDB, err := gorm.Open(gormpostgres.Open(cfg.Source), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return gormDB, nil
}
