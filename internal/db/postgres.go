package db

import (
	"fmt"
	"github.com/learnfinity/learnfinity-backend/internal/logger"
	"github.com/learnfinity/learnfinity-backend/internal/types"
	"github.com/learnfinity/learnfinity-backend/internal/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "learnfinity", log)
	postgresSSLMode := utils.GetEnv("POSTGRES_SSLMODE", "disable", log)
	log.Debug("Environment variables loaded")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName, postgresSSLMode)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
	}
	log.Info("uuid-ossp extension enabled")

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.CredentialMapping{},
		&types.Employee{},
		&types.Course{},
		&types.Enrollment{},
		&types.PersonalizedContent{},
		&types.LearningPath{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	if err := s.addForeignKey("fk_user_token_user_id",
		`ALTER TABLE "user_token" ADD CONSTRAINT "fk_user_token_user_id" FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`); err != nil {
		return err
	}
	if err := s.addForeignKey("fk_enrollment_employee_id",
		`ALTER TABLE "enrollment" ADD CONSTRAINT "fk_enrollment_employee_id" FOREIGN KEY ("employee_id") REFERENCES "hr_employee"("id") ON DELETE CASCADE`); err != nil {
		return err
	}
	if err := s.addForeignKey("fk_enrollment_course_id",
		`ALTER TABLE "enrollment" ADD CONSTRAINT "fk_enrollment_course_id" FOREIGN KEY ("course_id") REFERENCES "course"("id") ON DELETE CASCADE`); err != nil {
		return err
	}
	if err := s.db.Exec(uniqueActiveMappingIndexDDL).Error; err != nil {
		s.log.Error("Failed to create active-mapping unique index", "error", err)
		return fmt.Errorf("Failed to create active-mapping unique index: %w", err)
	}
	return nil
}

// Retired mappings are soft-deleted rows; only active rows hold the email, so
// the same original email can be mapped again after retirement.
const uniqueActiveMappingIndexDDL = `CREATE UNIQUE INDEX IF NOT EXISTS "uniq_credential_mapping_original_email_active" ON "credential_mapping" ("original_email") WHERE deleted_at IS NULL`

// addForeignKey is idempotent across restarts.
func (s *PostgresService) addForeignKey(name, ddl string) error {
	stmt := fmt.Sprintf(`
    DO $$ BEGIN
      IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
        %s;
      END IF;
    END $$;
  `, name, ddl)
	if err := s.db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("Failed to add %s: %w", name, err)
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
