package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath     = "config.yaml"
	defaultOutputDir      = "presentations"
	defaultSearchURL      = "https://api.unsplash.com/search/photos"
	defaultOrientation    = "landscape"
	defaultSearchTimeout  = 15
	defaultFetchTimeout   = 10
	defaultPlaceholderURL = "https://placehold.co"
	defaultTemplateSet    = "extended"
	defaultGCSPrefix      = "presentations"
)

type Config struct {
	UnsplashAccessKey string
	SerpAPIKey        string
	GCPProject        string
	GCSBucket         string

	Output  OutputConfig  `yaml:"output"`
	Images  ImagesConfig  `yaml:"images"`
	Content ContentConfig `yaml:"content"`
	GCS     GCSConfig     `yaml:"gcs"`
	Secrets SecretsConfig `yaml:"secrets"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type ImagesConfig struct {
	Disabled       bool   `yaml:"disabled"`
	SearchURL      string `yaml:"search_url"`
	Orientation    string `yaml:"orientation"`
	SearchTimeout  int    `yaml:"search_timeout"` // seconds
	FetchTimeout   int    `yaml:"fetch_timeout"`  // seconds
	PlaceholderURL string `yaml:"placeholder_url"`
	TempDir        string `yaml:"temp_dir"`
}

func (c ImagesConfig) SearchTimeoutDuration() time.Duration {
	return time.Duration(c.SearchTimeout) * time.Second
}

func (c ImagesConfig) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

type ContentConfig struct {
	TemplateSet   string `yaml:"template_set"`
	TemplatesPath string `yaml:"templates_path"`
}

type GCSConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// SecretsConfig names Secret Manager secrets consulted when the matching
// environment variable is empty. Either a full resource name or a bare
// secret id resolved against GOOGLE_CLOUD_PROJECT.
type SecretsConfig struct {
	UnsplashAccessKey string `yaml:"unsplash_access_key"`
}

type secretAccessor func(ctx context.Context, name string) (string, error)

func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}
	return load(ctx, defaultConfigPath, accessSecret)
}

func load(ctx context.Context, path string, access secretAccessor) (*Config, error) {
	cfg := &Config{
		UnsplashAccessKey: os.Getenv("UNSPLASH_ACCESS_KEY"),
		SerpAPIKey:        os.Getenv("SERPAPI_KEY"),
		GCPProject:        os.Getenv("GOOGLE_CLOUD_PROJECT"),
		GCSBucket:         os.Getenv("GCS_BUCKET"),
	}

	if err := loadYAMLConfig(cfg, path); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	resolveSecrets(ctx, cfg, access)

	return cfg, nil
}

func loadYAMLConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("No config.yaml found, using defaults")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	applyOutputDefaults(cfg)
	applyImagesDefaults(cfg)
	applyContentDefaults(cfg)
	applyGCSDefaults(cfg)
}

func applyOutputDefaults(cfg *Config) {
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = defaultOutputDir
	}
}

func applyImagesDefaults(cfg *Config) {
	if cfg.Images.SearchURL == "" {
		cfg.Images.SearchURL = defaultSearchURL
	}
	if cfg.Images.Orientation == "" {
		cfg.Images.Orientation = defaultOrientation
	}
	if cfg.Images.SearchTimeout <= 0 {
		cfg.Images.SearchTimeout = defaultSearchTimeout
	}
	if cfg.Images.FetchTimeout <= 0 {
		cfg.Images.FetchTimeout = defaultFetchTimeout
	}
	if cfg.Images.PlaceholderURL == "" {
		cfg.Images.PlaceholderURL = defaultPlaceholderURL
	}
}

func applyContentDefaults(cfg *Config) {
	if cfg.Content.TemplateSet == "" {
		cfg.Content.TemplateSet = defaultTemplateSet
	}
}

func applyGCSDefaults(cfg *Config) {
	if cfg.GCS.Prefix == "" {
		cfg.GCS.Prefix = defaultGCSPrefix
	}
}

// resolveSecrets never fails: a missing credential only degrades image
// search to placeholders.
func resolveSecrets(ctx context.Context, cfg *Config, access secretAccessor) {
	if cfg.UnsplashAccessKey != "" || cfg.Secrets.UnsplashAccessKey == "" || access == nil {
		return
	}

	name, ok := secretVersionName(cfg.Secrets.UnsplashAccessKey, cfg.GCPProject)
	if !ok {
		slog.Warn("Cannot resolve secret without GOOGLE_CLOUD_PROJECT", "secret", cfg.Secrets.UnsplashAccessKey)
		return
	}

	value, err := access(ctx, name)
	if err != nil {
		slog.Warn("Failed to read Unsplash key from Secret Manager", "secret", name, "error", err)
		return
	}
	cfg.UnsplashAccessKey = strings.TrimSpace(value)
}

func secretVersionName(secret, project string) (string, bool) {
	if strings.HasPrefix(secret, "projects/") {
		if !strings.Contains(secret, "/versions/") {
			secret += "/versions/latest"
		}
		return secret, true
	}
	if project == "" {
		return "", false
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, secret), true
}

func accessSecret(ctx context.Context, name string) (string, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("access secret version: %w", err)
	}
	return string(resp.GetPayload().GetData()), nil
}
