package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/portfolio-site-backend/api"
	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/blob"
	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rpupo63/portfolio-site-backend/services"
)

func main() {
	// Load environment variables from .env file
	c := config.Load()
	setupLogging(c)

	log.Info().Msg("Initializing app...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if prefix := config.GetString(c, "SSM_PARAMETER_PATH", ""); prefix != "" {
		if err := loadSSM(ctx, c, prefix); err != nil {
			log.Fatal().Err(err).Str("path", prefix).Msg("Error loading parameters from SSM")
		}
	}

	db, err := openDatabase(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		log.Fatal().Err(err).Msg("Error testing database connection")
	}

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db, os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		log.Info().Msg("Generating column mismatch report...")
		if _, err := models.GenerateColumnMismatchReport(db, os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		return
	}

	if err := models.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Error migrating database")
	}

	deps := api.Dependencies{Database: database.New(db)}

	authenticator, err := auth.NewAuthenticator(
		config.GetString(c, "ADMIN_EMAIL", ""),
		config.GetString(c, "ADMIN_PASSWORD_HASH", ""),
		config.GetString(c, "JWT_SECRET", ""),
		time.Duration(config.GetInt(c, "JWT_TTL_HOURS", 12))*time.Hour,
	)
	if err != nil {
		log.Warn().Err(err).Msg("Admin sign-in disabled")
	} else {
		deps.Authenticator = authenticator
	}

	uploader, err := blob.NewS3Uploader(ctx, blob.Options{
		Bucket:        config.GetString(c, "S3_BUCKET", ""),
		Region:        config.GetString(c, "S3_REGION", "us-east-1"),
		Endpoint:      config.GetString(c, "S3_ENDPOINT", ""),
		PublicBaseURL: config.GetString(c, "S3_PUBLIC_BASE_URL", ""),
	})
	if err != nil {
		log.Warn().Err(err).Msg("Thumbnail uploads disabled")
	} else {
		deps.Uploader = uploader
	}

	deps.Contact = contactService(c)

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(deps, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

func setupLogging(c map[string]string) {
	level, err := zerolog.ParseLevel(config.GetString(c, "LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if strings.EqualFold(config.GetString(c, "LOG_FORMAT", "json"), "console") {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func loadSSM(ctx context.Context, c map[string]string, prefix string) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}
	n, err := config.LoadSSM(ctx, ssm.NewFromConfig(awsCfg), c, prefix)
	if err != nil {
		return err
	}
	log.Info().Int("parameters", n).Str("path", prefix).Msg("Loaded parameters from SSM")
	return nil
}

func openDatabase(c map[string]string) (*gorm.DB, error) {
	gormLogger := logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	gormConfig := &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	}

	dbType := config.GetString(c, "DB_TYPE", "")
	log.Info().Str("dbType", dbType).Msg("Connecting to database")

	switch dbType {
	case "supa":
		db, err := gorm.Open(postgres.New(postgres.Config{
			DSN:                  postgresDSN(c, config.GetString(c, "SUPABASE_DB_HOST", "")),
			PreferSimpleProtocol: true,
		}), gormConfig)
		if err != nil {
			return nil, err
		}

		// Enable required PostgreSQL extensions
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
			return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
		}

		if hosts := config.GetList(c, "DB_REPLICA_HOSTS"); len(hosts) > 0 {
			replicas := make([]gorm.Dialector, 0, len(hosts))
			for _, host := range hosts {
				replicas = append(replicas, postgres.New(postgres.Config{
					DSN:                  postgresDSN(c, host),
					PreferSimpleProtocol: true,
				}))
			}
			if err := database.UseReplicas(db, replicas...); err != nil {
				return nil, fmt.Errorf("register read replicas: %w", err)
			}
			log.Info().Int("replicas", len(replicas)).Msg("Read replicas registered")
		}
		return db, nil
	case "sqlite":
		return gorm.Open(sqlite.Open(config.GetString(c, "SQLITE_PATH", "portfolio.db")), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}
}

func postgresDSN(c map[string]string, host string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
		host,
		config.GetString(c, "SUPABASE_DB_USER", ""),
		config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
		config.GetString(c, "SUPABASE_DB_NAME", ""),
		config.GetString(c, "SUPABASE_DB_PORT", "5432"),
	)
}

// contactService wires the contact form. Without Resend credentials the
// form is disabled; without Twilio credentials there is no SMS ping.
func contactService(c map[string]string) *services.ContactService {
	mailer, err := services.NewMailer(
		config.GetString(c, "RESEND_API_KEY", ""),
		config.GetString(c, "RESEND_FROM_EMAIL", ""),
	)
	if err != nil {
		log.Warn().Err(err).Msg("Contact form disabled")
		return nil
	}

	var notifier services.Notifier
	if sms := services.NewSMSNotifier(
		config.GetString(c, "TWILIO_ACCOUNT_SID", ""),
		config.GetString(c, "TWILIO_AUTH_TOKEN", ""),
		config.GetString(c, "TWILIO_FROM_NUMBER", ""),
		config.GetString(c, "TWILIO_TO_NUMBER", ""),
	); sms != nil {
		notifier = sms
	}

	return services.NewContactService(
		mailer,
		notifier,
		config.GetList(c, "CONTACT_EMAIL_TO"),
		config.GetString(c, "SITE_NAME", "Portfolio"),
	)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
