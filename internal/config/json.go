package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/hhvault/hhvault/internal/flagx"
	"github.com/hhvault/hhvault/internal/timex"
)

// JsonConfig is the DTO for reading JSON configuration files. It uses
// timex.Duration for interval fields, which parses both string values such
// as "30m" and integer nanoseconds. After unmarshalling, its fields are
// copied into the runtime Config.
type JsonConfig struct {
	StorageDriver   string         `json:"storage_driver"`
	DatabaseDSN     string         `json:"database_dsn"`
	SQLitePath      string         `json:"sqlite_path"`
	LedgerPath      string         `json:"ledger_path"`
	KeystoreDir     string         `json:"keystore_dir"`
	SessionSecret   string         `json:"session_secret"`
	SessionValidity timex.Duration `json:"session_validity"`
	AttestValue     string         `json:"attest_value"`
	BlobBackend     string         `json:"blob_backend"`
	S3AccessKey     string         `json:"s3_access_key"`
	S3SecretKey     string         `json:"s3_secret_key"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
	GatewayBase     string         `json:"gateway_base"`
}

// parseJson loads configuration values from the JSON file named by the
// -c / -config flags into the provided Config. When no file is named,
// nothing is loaded. An unreadable or invalid file panics: a configuration
// the operator explicitly pointed at must not be half-applied.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.StorageDriver = c.StorageDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.SQLitePath = c.SQLitePath
	config.LedgerPath = c.LedgerPath
	config.KeystoreDir = c.KeystoreDir
	config.SessionSecret = c.SessionSecret
	config.SessionValidity = time.Duration(c.SessionValidity.Duration)
	config.AttestValue = c.AttestValue
	config.BlobBackend = c.BlobBackend
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.GatewayBase = c.GatewayBase
}
