package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Server   ServerConfig   `yaml:"server"`
	Composer ComposerConfig `yaml:"composer"`
	Storage  StorageConfig  `yaml:"storage"`
	Images   ImagesConfig   `yaml:"images"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
}

type SiteConfig struct {
	Name    string `yaml:"name" default:"The Composer"`
	Tagline string `yaml:"tagline" default:"Write something worth reading"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"12600"`
}

type ComposerConfig struct {
	// EmptyMarkup is what the rich-text editor sends for a document with no text.
	EmptyMarkup string `yaml:"empty_markup" default:"<p></p>"`

	// RequireTerms gates submission behind the terms dialog.
	RequireTerms bool `yaml:"require_terms" default:"true"`

	DraftIdleMinutes int    `yaml:"draft_idle_minutes" default:"120"`
	MaxTitleLength   int    `yaml:"max_title_length" default:"200"`
	ProfilePath      string `yaml:"profile_path" default:"/user/"`
}

type StorageConfig struct {
	DatabasePath string `yaml:"database_path" default:"./composer.db"`
	Compression  string `yaml:"compression" default:"zstd"`
}

type ImagesConfig struct {
	Backend    string `yaml:"backend" default:"fs"`
	Dir        string `yaml:"dir" default:"./uploads"`
	MaxWidth   int    `yaml:"max_width" default:"1200"`
	Quality    int    `yaml:"quality" default:"80"`
	MaxUpload  int    `yaml:"max_upload_mb" default:"10"`
	S3Bucket   string `yaml:"s3_bucket" default:""`
	S3Endpoint string `yaml:"s3_endpoint" default:""`
	PublicURL  string `yaml:"public_url" default:"/uploads/"`
}

var AppConfig *Config

func LoadConfig(path string) error {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	// Try to read and parse the config file
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just use defaults
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		AppConfig = config
		return nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return err
	}

	AppConfig = config
	return nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Images.Backend {
	case ImageBackendFS:
	case ImageBackendS3:
		if c.Images.S3Bucket == "" {
			return fmt.Errorf("images.s3_bucket is required for the %q backend", ImageBackendS3)
		}
	default:
		return fmt.Errorf("unsupported image backend %q", c.Images.Backend)
	}

	switch c.Storage.Compression {
	case CompressionZstd, CompressionGzip:
	default:
		return fmt.Errorf("unsupported compression %q", c.Storage.Compression)
	}

	if c.Composer.EmptyMarkup == "" {
		return fmt.Errorf("composer.empty_markup must not be empty")
	}
	if c.Images.MaxWidth <= 0 {
		return fmt.Errorf("images.max_width must be positive, got %d", c.Images.MaxWidth)
	}
	return nil
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
