package config

const (
	KeyLogLevel      = "log_level"
	KeyPostgresURL   = "postgres_url"
	KeyDBDebug       = "db_debug"
	KeyLoadBatchSize = "load_batch_size"
	KeyAutoMigrate   = "auto_migrate"
	KeyMigrationsDir = "db_migrations_dir"
)
