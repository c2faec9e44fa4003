package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Driver struct {
	BaseURL *string `koanf:"BASEURL"`
	Dir     *string `koanf:"DIR"`
	Proxy   *string `koanf:"PROXY"`
}

type Browser struct {
	Engine     *string `koanf:"ENGINE"`
	Path       *string `koanf:"PATH"`
	DriverPath *string `koanf:"DRIVERPATH"`
	Headless   *bool   `koanf:"HEADLESS"`
	Trace      *bool   `koanf:"TRACE"`
	Port       *int    `koanf:"PORT"`
}

type Locate struct {
	Timeout *time.Duration `koanf:"TIMEOUT"`
}

type Config struct {
	koanf   *koanf.Koanf
	Driver  Driver  `koanf:"DRIVER"`
	Browser Browser `koanf:"BROWSER"`
	Locate  Locate  `koanf:"LOCATE"`
}

const (
	delimiter = "_"
	prefix    = "WZL" + delimiter

	BrowserEngineRod      = "rod"
	BrowserEngineSelenium = "selenium"
	DriverBaseURLDefault  = "https://chromedriver.storage.googleapis.com"
	DriverDirDefault      = "."
	BrowserPortDefault    = 9515
	LocateTimeoutDefault  = time.Minute
)

func New(path string, includeEnv bool) (*Config, error) {
	k := koanf.New(delimiter)
	if err := k.Load(confmap.Provider(defaultValues(), delimiter), nil); err != nil {
		return nil, fmt.Errorf("error loading default config values: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		if err = k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config from yaml file: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	if includeEnv {
		envProvider := env.ProviderWithValue(prefix, delimiter, environmentVariableModifier)
		if err := k.Load(envProvider, nil); err != nil {
			return nil, fmt.Errorf("error loading config from environment variables: %w", err)
		}
	}
	return unmarshal(k)
}

func NewFromMap(data map[string]interface{}) (*Config, error) {
	k := koanf.New(delimiter)
	if err := k.Load(confmap.Provider(defaultValues(), delimiter), nil); err != nil {
		return nil, fmt.Errorf("error loading default config values: %w", err)
	}
	if err := k.Load(confmap.Provider(data, delimiter), nil); err != nil {
		return nil, err
	}
	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	conf := Config{
		koanf: k,
	}
	if err := k.Unmarshal("", &conf); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return &conf, nil
}

func (c *Config) Validate() error {
	if isNilOrEmpty(c.Driver.BaseURL) {
		return fmt.Errorf("field 'DRIVER_BASEURL' is required")
	}
	if err := validateURL(*c.Driver.BaseURL); err != nil {
		return fmt.Errorf("field 'DRIVER_BASEURL' is invalid: %w", err)
	}
	if isNilOrEmpty(c.Driver.Dir) {
		return fmt.Errorf("field 'DRIVER_DIR' is required")
	}
	if !isNilOrEmpty(c.Driver.Proxy) {
		if err := validateURL(*c.Driver.Proxy); err != nil {
			return fmt.Errorf("field 'DRIVER_PROXY' is invalid: %w", err)
		}
	}
	if isNilOrEmpty(c.Browser.Engine) {
		return fmt.Errorf("field 'BROWSER_ENGINE' is required")
	}
	if !slices.Contains(validBrowserEngines(), *c.Browser.Engine) {
		return fmt.Errorf("field 'BROWSER_ENGINE' must be one of: %s", strings.Join(validBrowserEngines(), ", "))
	}
	if c.Browser.Port == nil || *c.Browser.Port < 1 || *c.Browser.Port > 65535 {
		return fmt.Errorf("field 'BROWSER_PORT' must be between 1 and 65535")
	}
	if c.Locate.Timeout == nil || *c.Locate.Timeout <= 0 {
		return fmt.Errorf("field 'LOCATE_TIMEOUT' must be a positive duration")
	}
	return nil
}

func (c *Config) WriteFile(path string) error {
	data, err := c.koanf.Marshal(yaml.Parser())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Flatten() map[string]interface{} {
	return c.koanf.All()
}

func defaultValues() map[string]interface{} {
	return map[string]interface{}{
		"DRIVER_BASEURL":     DriverBaseURLDefault,
		"DRIVER_DIR":         DriverDirDefault,
		"DRIVER_PROXY":       "",
		"BROWSER_ENGINE":     BrowserEngineRod,
		"BROWSER_PATH":       "",
		"BROWSER_DRIVERPATH": "",
		"BROWSER_HEADLESS":   true,
		"BROWSER_TRACE":      false,
		"BROWSER_PORT":       BrowserPortDefault,
		"LOCATE_TIMEOUT":     LocateTimeoutDefault.String(),
	}
}

func validBrowserEngines() []string {
	return []string{
		BrowserEngineRod,
		BrowserEngineSelenium,
	}
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("expected http or https scheme, but got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("expected a host in %q", raw)
	}
	return nil
}

func environmentVariableModifier(key string, value string) (string, any) {
	key = strings.TrimPrefix(key, prefix)
	if value == "" {
		return key, nil
	}
	return key, value
}

func isNilOrEmpty(value *string) bool {
	return value == nil || *value == ""
}
