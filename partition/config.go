package partition

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/unstruct/kvstore"
)

// FileConfig is the YAML deploy configuration for hosts embedding the
// adapter. The partition options themselves stay environment-driven
// (§ResolveParams); the file covers what the environment does not:
// where the credential store lives and how responses are handled.
type FileConfig struct {
	CredentialsDB    string `yaml:"credentials_db"`
	SealSecret       string `yaml:"seal_secret"` // optional, >= 32 bytes: encrypt stored credentials
	TablesAsMarkdown bool   `yaml:"tables_as_markdown"`
	MaxResponseMB    int    `yaml:"max_response_mb"`
}

// DefaultFileConfig returns sane defaults.
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		CredentialsDB: "unstruct.db",
		MaxResponseMB: 32,
	}
}

// LoadConfig reads and parses a YAML config file, merged over
// DefaultFileConfig. A .env file next to the process is loaded
// best-effort first so the partition environment table can be shipped
// alongside the config.
func LoadConfig(path string) (*FileConfig, error) {
	_ = godotenv.Load()

	cfg := DefaultFileConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *FileConfig) Validate() error {
	if c.CredentialsDB == "" {
		return fmt.Errorf("credentials_db is required")
	}
	if c.MaxResponseMB <= 0 {
		return fmt.Errorf("max_response_mb must be > 0")
	}
	if c.SealSecret != "" && len(c.SealSecret) < kvstore.MinSecretLen {
		return fmt.Errorf("seal_secret must be at least %d bytes", kvstore.MinSecretLen)
	}
	return nil
}

// NewFromFile builds a Client from a YAML config file: it opens the
// SQLite credential store (sealed when seal_secret is set) and wires it
// into the client. The returned store is the caller's to close.
func NewFromFile(path string) (*Client, *kvstore.SQLite, error) {
	fc, err := LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}

	db, err := kvstore.Open(fc.CredentialsDB, kvstore.WithMkdirAll())
	if err != nil {
		return nil, nil, err
	}

	var creds kvstore.Store = db
	if fc.SealSecret != "" {
		sealed, err := kvstore.NewSealed(db, []byte(fc.SealSecret))
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("partition: seal credentials: %w", err)
		}
		creds = sealed
	}

	client := New(Config{
		Credentials:      creds,
		TablesAsMarkdown: fc.TablesAsMarkdown,
		MaxResponseBytes: int64(fc.MaxResponseMB) << 20,
	})
	return client, db, nil
}
