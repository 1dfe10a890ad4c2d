package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/config"
	"github.com/cmlabs-hris/hrm-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/domain/notification"
	"github.com/cmlabs-hris/hrm-core/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/hrm-core/internal/handler/http"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/cron"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/database"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/queue"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/sse"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/telemetry"
	"github.com/cmlabs-hris/hrm-core/internal/repository/memory"
	"github.com/cmlabs-hris/hrm-core/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hrm-core/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/hrm-core/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hrm-core/internal/service/notification"
	"github.com/cmlabs-hris/hrm-core/migrations"
)

// repositories is the storage the services are built on, whichever driver
// backs it.
type repositories struct {
	tx            database.Transactor
	employees     employee.EmployeeRepository
	leaveTypes    leave.LeaveTypeRepository
	leaveRequests leave.LeaveRequestRepository
	leaveBalances leave.LeaveBalanceRepository
	attendance    attendance.AttendanceRepository
	shifts        attendance.ShiftRepository
	notifications notification.Repository
	pinger        appHTTP.Pinger
	close         func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := appHTTP.NewLogger(cfg.SlogLevel(), cfg.App.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	repos, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		return err
	}

	hub := sse.NewHub()
	dispatcher := notificationService.NewNotificationService(hub, publisher, notificationService.Config{
		WorkerCount:   cfg.Notification.Workers,
		QueueSize:     cfg.Notification.QueueSize,
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
	})
	defer dispatcher.Stop()

	jwtService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("jwt service: %w", err)
	}

	leaves := leaveService.NewLeaveService(
		repos.tx,
		repos.leaveTypes,
		repos.leaveRequests,
		repos.leaveBalances,
		repos.employees,
		repos.notifications,
		dispatcher,
		leaveService.Policy{
			AllowPastStart: cfg.Leave.AllowPastStart,
			Location:       cfg.App.Location,
		},
	)
	attendances := attendanceService.NewAttendanceService(
		repos.tx,
		repos.attendance,
		repos.shifts,
		repos.employees,
		attendanceService.Policy{
			Location:       cfg.App.Location,
			DefaultShiftID: cfg.Attendance.DefaultShiftID,
		},
	)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendances, repos.employees, repos.notifications, dispatcher).
		RegisterJobs(scheduler, cfg.Attendance.SweepInterval)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Logger:              logger,
		LogLevel:            cfg.SlogLevel(),
		AllowedOrigins:      cfg.App.CORSOrigins,
		JWTService:          jwtService,
		LeaveHandler:        appHTTP.NewLeaveHandler(leaves),
		AttendanceHandler:   appHTTP.NewAttendanceHandler(attendances),
		NotificationHandler: appHTTP.NewNotificationHandler(dispatcher, jwtService),
		Store:               repos.pinger,
		Hub:                 hub,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.App.Port, "store", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("server exited")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (repositories, error) {
	if cfg.Database.Driver == config.StoreDriverMemory {
		store := memory.NewStore()
		fixtures.SeedDefaults(store, fixtures.DemoOrganization())
		slog.Warn("using in-memory store seeded with the demo organisation; data is lost on exit")
		return repositories{
			tx:            store,
			employees:     memory.NewEmployeeRepository(store),
			leaveTypes:    memory.NewLeaveTypeRepository(store),
			leaveRequests: memory.NewLeaveRequestRepository(store),
			leaveBalances: memory.NewLeaveBalanceRepository(store),
			attendance:    memory.NewAttendanceRepository(store),
			shifts:        memory.NewShiftRepository(store),
			notifications: memory.NewNotificationRepository(store),
			pinger:        store,
			close:         func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		return repositories{}, fmt.Errorf("connect to database: %w", err)
	}
	slog.Info("connected to database", "host", cfg.Database.Host, "name", cfg.Database.Name)

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, migrations.FS); err != nil {
			db.Close()
			return repositories{}, fmt.Errorf("migrate: %w", err)
		}
	}

	return repositories{
		tx:            postgresql.NewTransactor(db),
		employees:     postgresql.NewEmployeeRepository(db),
		leaveTypes:    postgresql.NewLeaveTypeRepository(db),
		leaveRequests: postgresql.NewLeaveRequestRepository(db),
		leaveBalances: postgresql.NewLeaveBalanceRepository(db),
		attendance:    postgresql.NewAttendanceRepository(db),
		shifts:        postgresql.NewShiftRepository(db),
		notifications: postgresql.NewNotificationRepository(db),
		pinger:        db,
		close:         db.Close,
	}, nil
}

// newPublisher returns the SQS publisher, or nil when no queue is set.
func newPublisher(ctx context.Context, cfg *config.Config) (notification.Publisher, error) {
	if cfg.AWS.NotificationQueueURL == "" {
		return nil, nil
	}

	awsCfg, err := queue.NewAWSConfig(ctx, queue.AWSOptions{Region: cfg.AWS.Region, Endpoint: cfg.AWS.Endpoint})
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := queue.NewSQSClient(awsCfg, cfg.AWS.Endpoint)
	slog.Info("notification publisher enabled", "queue_url", cfg.AWS.NotificationQueueURL)
	return queue.NewSQSPublisher(client, cfg.AWS.NotificationQueueURL), nil
}
