package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvFile is loaded on Init when present; real environment variables win.
const EnvFile = "config.env"

func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load(EnvFile)
	if root != nil {
		_ = viper.BindPFlags(root.PersistentFlags())
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyDBDebug, false)
	viper.SetDefault(KeyLoadBatchSize, 500)
	viper.SetDefault(KeyAutoMigrate, false)
}

func LogLevel() string    { return viper.GetString(KeyLogLevel) }
func PostgresURL() string { return viper.GetString(KeyPostgresURL) }
func DBDebug() bool       { return viper.GetBool(KeyDBDebug) }
func LoadBatchSize() int  { return viper.GetInt(KeyLoadBatchSize) }
func AutoMigrate() bool   { return viper.GetBool(KeyAutoMigrate) }

// MigrationsDir is empty unless overridden, which selects the embedded set.
func MigrationsDir() string { return viper.GetString(KeyMigrationsDir) }
