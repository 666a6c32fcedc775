// container.go
package main

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/workforce/pkg/config"
	"github.com/Abraxas-365/workforce/pkg/iam/auth"
	"github.com/Abraxas-365/workforce/pkg/logx"
	"github.com/Abraxas-365/workforce/pkg/notify"
	"github.com/Abraxas-365/workforce/pkg/notify/notifyinfra"
	"github.com/Abraxas-365/workforce/pkg/placement/assignment"
	"github.com/Abraxas-365/workforce/pkg/placement/assignment/assignmentapi"
	"github.com/Abraxas-365/workforce/pkg/placement/assignment/assignmentinfra"
	"github.com/Abraxas-365/workforce/pkg/placement/assignment/assignmentsrv"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB    *sqlx.DB
	Redis *redis.Client

	// Stores
	Store  assignment.Store
	Outbox *notifyinfra.RedisOutbox

	// Services
	TokenService    *auth.JWTService
	ApprovalService *assignmentsrv.ApprovalService

	// API Handlers
	AssignmentHandlers *assignmentapi.AssignmentHandlers

	// Middleware
	AuthMiddleware *auth.TokenMiddleware

	// Background Services
	Dispatcher *notifyinfra.Dispatcher
}

// NewContainer initializes the dependency injection container
func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing dependency container...")

	c := &Container{
		Config: cfg,
	}

	c.initInfrastructure()
	c.initServices()

	logx.Info("✅ Container initialized successfully")
	return c
}

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	// 1. Database Connection
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Config.Database.Host,
		c.Config.Database.Port,
		c.Config.Database.User,
		c.Config.Database.Password,
		c.Config.Database.Name,
		c.Config.Database.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
	c.DB = db
	logx.Info("✅ Database connected")

	// 2. Redis Connection
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v (Redis is required for the notification outbox)", err)
	}
	logx.Info("✅ Redis connected")

	logx.Info("✅ Infrastructure initialized")
}

func (c *Container) initServices() {
	logx.Info("🗄️  Initializing stores and services...")

	// --- Transactional store + notification outbox ---
	c.Store = assignmentinfra.NewPostgresStore(c.DB)
	c.Outbox = notifyinfra.NewRedisOutbox(c.Redis, c.Config.Notify.OutboxKey)

	// --- Notification delivery (sender + mailer) ---
	sender := NewConsoleSender()

	var mailer notify.Mailer
	switch c.Config.Email.Provider {
	case "ses":
		awsCfg, err := awsConfig.LoadDefaultConfig(context.TODO(), awsConfig.WithRegion(c.Config.Email.AWSRegion))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		mailer = notifyinfra.NewSESMailer(sesv2.NewFromConfig(awsCfg), c.Config.Email.FromAddress, c.Config.Email.FromName)
		logx.Infof("✅ SES mailer configured (region: %s)", c.Config.Email.AWSRegion)
	default:
		mailer = NewConsoleMailer()
		logx.Warn("⚠️  Using console mailer (not for production)")
	}

	// --- Domain Services ---
	c.TokenService = auth.NewJWTServiceFromConfig(&c.Config.Auth.JWT)
	c.ApprovalService = assignmentsrv.NewApprovalService(c.Store, c.Outbox, c.Config.Server.AgencyAppURL)

	// --- API Handlers ---
	c.AssignmentHandlers = assignmentapi.NewAssignmentHandlers(c.ApprovalService)

	// --- Middleware ---
	c.AuthMiddleware = auth.NewTokenMiddleware(c.TokenService)

	// --- Background Services ---
	c.Dispatcher = notifyinfra.NewDispatcher(c.Outbox, sender, mailer, c.Config.Notify.PollTimeout)

	logx.Info("✅ All services and handlers initialized")
}

// StartBackgroundServices starts background workers
func (c *Container) StartBackgroundServices(ctx context.Context) {
	logx.Info("🔄 Starting background services...")

	go c.Dispatcher.Start(ctx)
	logx.Info("✅ Notification dispatcher started")
}

// Cleanup closes all connections and stops workers
func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("✅ Database connection closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup completed")
}

// ============================================================================
// Console Delivery (Development)
// ============================================================================

// ConsoleSender implements the notify.Sender interface by printing the
// notification to the terminal
type ConsoleSender struct{}

// NewConsoleSender creates a new console-based notification sender
func NewConsoleSender() *ConsoleSender {
	return &ConsoleSender{}
}

// Notify prints the notification to the terminal
func (s *ConsoleSender) Notify(_ context.Context, n notify.Notification) error {
	fmt.Println("====================================================")
	fmt.Printf("🔔 NOTIFICATION [%s]\n", n.Priority)
	fmt.Printf("To: %s\n", n.RecipientID)
	fmt.Printf("Title: %s\n", n.Title)
	fmt.Printf("Message: %s\n", n.Message)
	if n.ActionURL != "" {
		fmt.Printf("Action: %s\n", n.ActionURL)
	}
	fmt.Println("====================================================")
	return nil
}

// ConsoleMailer implements the notify.Mailer interface by printing the email
// to the terminal
type ConsoleMailer struct{}

// NewConsoleMailer creates a new console-based mailer
func NewConsoleMailer() *ConsoleMailer {
	return &ConsoleMailer{}
}

// Send prints the email to the terminal
func (m *ConsoleMailer) Send(_ context.Context, to, subject, body string) error {
	fmt.Println("====================================================")
	fmt.Printf("📧 EMAIL\n")
	fmt.Printf("To: %s\n", to)
	fmt.Printf("Subject: %s\n", subject)
	fmt.Printf("Body: %s\n", body)
	fmt.Println("====================================================")
	return nil
}
