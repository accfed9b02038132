package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

func TestSetLogger(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	SetLogger(logger)

	// This test mainly ensures the function doesn't panic
}

func TestApplyDefaults(t *testing.T) {
	t.Run("Config struct defaults", func(t *testing.T) {
		config := &Config{}
		applyDefaults(config)

		if config.Site.Name != "The Composer" {
			t.Errorf("Expected site name 'The Composer', got %q", config.Site.Name)
		}
		if config.Server.Host != "0.0.0.0" {
			t.Errorf("Expected host '0.0.0.0', got %q", config.Server.Host)
		}
		if config.Server.Port != "12600" {
			t.Errorf("Expected port '12600', got %q", config.Server.Port)
		}

		if config.Composer.EmptyMarkup != "<p></p>" {
			t.Errorf("Expected empty markup '<p></p>', got %q", config.Composer.EmptyMarkup)
		}
		if !config.Composer.RequireTerms {
			t.Error("Expected terms gate to be enabled by default")
		}
		if config.Composer.DraftIdleMinutes != 120 {
			t.Errorf("Expected draft idle minutes 120, got %d", config.Composer.DraftIdleMinutes)
		}
		if config.Composer.ProfilePath != "/user/" {
			t.Errorf("Expected profile path '/user/', got %q", config.Composer.ProfilePath)
		}

		if config.Storage.Compression != CompressionZstd {
			t.Errorf("Expected compression %q, got %q", CompressionZstd, config.Storage.Compression)
		}
		if config.Images.Backend != ImageBackendFS {
			t.Errorf("Expected image backend %q, got %q", ImageBackendFS, config.Images.Backend)
		}
		if config.Images.MaxWidth != 1200 {
			t.Errorf("Expected max width 1200, got %d", config.Images.MaxWidth)
		}
		if config.Images.S3Bucket != "" {
			t.Errorf("Expected empty bucket, got %q", config.Images.S3Bucket)
		}

		if config.Logging.Level != "info" {
			t.Errorf("Expected logging level 'info', got %q", config.Logging.Level)
		}
	})

	t.Run("Custom struct with various field types", func(t *testing.T) {
		type TestStruct struct {
			StringField  string   `default:"test-string"`
			BoolField    bool     `default:"true"`
			IntField     int      `default:"42"`
			Float64Field float64  `default:"3.14"`
			SliceField   []string `default:"a,b,c"`
			NoDefault    string
		}

		test := &TestStruct{}
		applyDefaults(test)

		if test.StringField != "test-string" {
			t.Errorf("Expected string field 'test-string', got %q", test.StringField)
		}
		if !test.BoolField {
			t.Error("Expected bool field to be true")
		}
		if test.IntField != 42 {
			t.Errorf("Expected int field 42, got %d", test.IntField)
		}
		if test.Float64Field != 3.14 {
			t.Errorf("Expected float64 field 3.14, got %f", test.Float64Field)
		}
		expectedSlice := []string{"a", "b", "c"}
		if !reflect.DeepEqual(test.SliceField, expectedSlice) {
			t.Errorf("Expected slice %v, got %v", expectedSlice, test.SliceField)
		}
		if test.NoDefault != "" {
			t.Errorf("Expected no default field to be empty, got %q", test.NoDefault)
		}
	})

	t.Run("Invalid default values", func(t *testing.T) {
		type InvalidStruct struct {
			BadBool  bool    `default:"not-a-bool"`
			BadInt   int     `default:"not-an-int"`
			BadFloat float64 `default:"not-a-float"`
		}

		test := &InvalidStruct{}
		applyDefaults(test)

		if test.BadBool {
			t.Error("Expected invalid bool default to remain false")
		}
		if test.BadInt != 0 {
			t.Errorf("Expected invalid int default to remain 0, got %d", test.BadInt)
		}
		if test.BadFloat != 0.0 {
			t.Errorf("Expected invalid float default to remain 0.0, got %f", test.BadFloat)
		}
	})

	t.Run("Non-struct input", func(t *testing.T) {
		stringVar := "test"
		applyDefaults(&stringVar)
		applyDefaults(stringVar)
		applyDefaults(42)
		applyDefaults(nil)
	})
}

func TestConfigDefaultsGoldenFile(t *testing.T) {
	goldenData, err := os.ReadFile("testdata/defaults.yaml")
	if err != nil {
		t.Fatalf("Failed to read golden defaults file: %v", err)
	}

	var golden Config
	if err := yaml.Unmarshal(goldenData, &golden); err != nil {
		t.Fatalf("Failed to parse golden config: %v", err)
	}

	if got := Default(); !reflect.DeepEqual(*got, golden) {
		t.Errorf("Defaults drifted from testdata/defaults.yaml:\ngot  %+v\nwant %+v", *got, golden)
	}
}

func TestLoadConfig(t *testing.T) {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))

	testCases := []struct {
		name      string
		filename  string
		errorText string
	}{
		{name: "Valid defaults file", filename: "testdata/defaults.yaml"},
		{name: "Missing file falls back to defaults", filename: "testdata/does-not-exist.yaml"},
		{name: "Unknown image backend", filename: "testdata/invalid_backend.yaml", errorText: "unsupported image backend"},
		{name: "S3 backend without bucket", filename: "testdata/s3_without_bucket.yaml", errorText: "s3_bucket is required"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			originalAppConfig := AppConfig
			defer func() { AppConfig = originalAppConfig }()

			err := LoadConfig(tc.filename)
			if tc.errorText == "" {
				if err != nil {
					t.Fatalf("Expected no error but got: %v", err)
				}
				if AppConfig == nil {
					t.Fatal("Expected AppConfig to be set")
				}
				return
			}

			if err == nil {
				t.Fatalf("Expected error containing %q, got none", tc.errorText)
			}
			if !strings.Contains(err.Error(), tc.errorText) {
				t.Errorf("Expected error to contain %q, got %q", tc.errorText, err.Error())
			}
		})
	}

	t.Run("Partial file keeps remaining defaults", func(t *testing.T) {
		originalAppConfig := AppConfig
		defer func() { AppConfig = originalAppConfig }()

		if err := LoadConfig("testdata/partial.yaml"); err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if AppConfig.Composer.RequireTerms {
			t.Error("Expected require_terms to be overridden to false")
		}
		if AppConfig.Images.MaxWidth != 800 {
			t.Errorf("Expected max width 800, got %d", AppConfig.Images.MaxWidth)
		}
		if AppConfig.Composer.EmptyMarkup != "<p></p>" {
			t.Errorf("Expected default empty markup to survive, got %q", AppConfig.Composer.EmptyMarkup)
		}
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.yaml")
		if err := os.WriteFile(path, []byte("site: [unterminated"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := LoadConfig(path); err == nil {
			t.Error("Expected parse error for malformed YAML")
		}
	})
}
