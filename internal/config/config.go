/**
 * @description
 * This package handles the configuration management for the connector. It
 * uses the Viper library to read configuration from environment variables
 * (and an optional local .env file) into one immutable Config struct injected
 * at startup; nothing reads configuration ambiently after boot.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the connector. These
// values are loaded from environment variables.
type Config struct {
	ServerPort            string `mapstructure:"SERVER_PORT"`
	RabbitMQURL           string `mapstructure:"RABBITMQ_URL"`
	JobQueuePrefix        string `mapstructure:"JOB_QUEUE_PREFIX"`
	JobCompletionExchange string `mapstructure:"JOB_COMPLETION_EXCHANGE"`
	AMSName               string `mapstructure:"AMS_NAME"`
	AMSBaseURL            string `mapstructure:"AMS_BASE_URL"`
	AMSValidationPath     string `mapstructure:"AMS_VALIDATION_PATH"`
	AMSConfirmationPath   string `mapstructure:"AMS_CONFIRMATION_PATH"`
	AMSClientDetailsPath  string `mapstructure:"AMS_CLIENT_DETAILS_PATH"`
	AMSTimeoutMs          int    `mapstructure:"AMS_TIMEOUT_MS"`
	AMSLocalEnabled       bool   `mapstructure:"AMS_LOCAL_ENABLED"`
	AMSTenantID           string `mapstructure:"AMS_TENANT_ID"`
	WorkerMaxJobs         int    `mapstructure:"WORKER_MAX_JOBS"`
	InternalAPIKey        string `mapstructure:"INTERNAL_API_KEY"`
}

// LoadConfig reads configuration from environment variables from the given
// path. It uses Viper to automatically bind environment variables to the
// Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("JOB_QUEUE_PREFIX", "orchestrator.jobs")
	viper.SetDefault("JOB_COMPLETION_EXCHANGE", "orchestrator.job.completions")
	viper.SetDefault("AMS_NAME", "fineract")
	viper.SetDefault("AMS_VALIDATION_PATH", "/api/v1/paybill/validation")
	viper.SetDefault("AMS_CONFIRMATION_PATH", "/api/v1/paybill/confirmation")
	viper.SetDefault("AMS_CLIENT_DETAILS_PATH", "/api/v1/paybill/clientDetails")
	viper.SetDefault("AMS_TIMEOUT_MS", 5000)
	viper.SetDefault("AMS_LOCAL_ENABLED", false)
	viper.SetDefault("AMS_TENANT_ID", "default")
	viper.SetDefault("WORKER_MAX_JOBS", 10)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("JOB_QUEUE_PREFIX")
	_ = viper.BindEnv("JOB_COMPLETION_EXCHANGE")
	_ = viper.BindEnv("AMS_NAME")
	_ = viper.BindEnv("AMS_BASE_URL")
	_ = viper.BindEnv("AMS_VALIDATION_PATH")
	_ = viper.BindEnv("AMS_CONFIRMATION_PATH")
	_ = viper.BindEnv("AMS_CLIENT_DETAILS_PATH")
	_ = viper.BindEnv("AMS_TIMEOUT_MS")
	_ = viper.BindEnv("AMS_LOCAL_ENABLED")
	_ = viper.BindEnv("AMS_TENANT_ID")
	_ = viper.BindEnv("WORKER_MAX_JOBS")
	_ = viper.BindEnv("INTERNAL_API_KEY")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	// Unmarshal the configuration into the Config struct.
	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	config.AMSBaseURL = strings.TrimRight(strings.TrimSpace(config.AMSBaseURL), "/")
	config.AMSName = strings.TrimSpace(config.AMSName)
	config.InternalAPIKey = strings.TrimSpace(config.InternalAPIKey)

	if config.AMSTimeoutMs <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive AMS timeout configured; using default\" timeout_ms=%d", config.AMSTimeoutMs)
		config.AMSTimeoutMs = 5000
	}
	if config.WorkerMaxJobs <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive worker max jobs configured; using default\" max_jobs=%d", config.WorkerMaxJobs)
		config.WorkerMaxJobs = 10
	}

	return
}
