package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Source struct {
	ListURL   string `json:"listUrl" yaml:"listUrl"`
	UserAgent string `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	Timeout   string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

type Cache struct {
	File           string `json:"file,omitempty" yaml:"file,omitempty"`
	TeacherListTTL string `json:"teacherListTtl" yaml:"teacherListTtl"`
	TeacherTTL     string `json:"teacherTtl" yaml:"teacherTtl"`
}

type Fetch struct {
	Coalesce bool `json:"coalesce,omitempty" yaml:"coalesce,omitempty"`
}

type Server struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

type Notifications struct {
	HealthchecksURL string `json:"healthchecksUrl,omitempty" yaml:"healthchecksUrl,omitempty"`
}

type Config struct {
	Source        Source        `json:"source" yaml:"source"`
	Cache         Cache         `json:"cache" yaml:"cache"`
	Fetch         Fetch         `json:"fetch,omitempty" yaml:"fetch,omitempty"`
	Server        Server        `json:"server,omitempty" yaml:"server,omitempty"`
	Notifications Notifications `json:"notifications,omitempty" yaml:"notifications,omitempty"`
}

// Load reads a JSON config, or YAML when the file ends in .yaml/.yml.
// Fields left empty in the file keep their Default() value.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if isYAML(path) {
		err = yaml.Unmarshal(file, &cfg)
	} else {
		err = json.Unmarshal(file, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		def := Default()
		return &def, nil
	}
	return cfg, err
}

func Write(path string, cfg Config) error {
	var (
		b   []byte
		err error
	)
	if isYAML(path) {
		b, err = yaml.Marshal(cfg)
	} else {
		b, err = json.MarshalIndent(cfg, "", "  ")
		b = append(b, '\n')
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Durations are the parsed TTL and timeout settings.
type Durations struct {
	TeacherListTTL time.Duration
	TeacherTTL     time.Duration
	Timeout        time.Duration
}

// Durations parses the duration strings. Call Validate first for a report
// of every bad field.
func (c *Config) Durations() (Durations, error) {
	var d Durations
	var err error

	if d.TeacherListTTL, err = ParseDuration(c.Cache.TeacherListTTL); err != nil {
		return d, fmt.Errorf("cache.teacherListTtl: %w", err)
	}
	if d.TeacherTTL, err = ParseDuration(c.Cache.TeacherTTL); err != nil {
		return d, fmt.Errorf("cache.teacherTtl: %w", err)
	}
	d.Timeout = defaultTimeout
	if c.Source.Timeout != "" {
		if d.Timeout, err = ParseDuration(c.Source.Timeout); err != nil {
			return d, fmt.Errorf("source.timeout: %w", err)
		}
	}
	return d, nil
}

func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(strings.TrimSpace(c.Source.ListURL))
	if err != nil {
		errs = append(errs, fmt.Errorf("source.listUrl: %w", err))
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("source.listUrl must be an absolute http(s) url (got %q)", c.Source.ListURL))
	}

	listTTL, err := ParseDuration(c.Cache.TeacherListTTL)
	if err != nil {
		errs = append(errs, fmt.Errorf("cache.teacherListTtl: %w", err))
	}
	teacherTTL, err := ParseDuration(c.Cache.TeacherTTL)
	if err != nil {
		errs = append(errs, fmt.Errorf("cache.teacherTtl: %w", err))
	}
	if listTTL > 0 && teacherTTL > 0 && teacherTTL >= listTTL {
		errs = append(errs, fmt.Errorf("cache.teacherTtl (%s) must be shorter than cache.teacherListTtl (%s)", teacherTTL, listTTL))
	}

	if c.Source.Timeout != "" {
		if _, err := ParseDuration(c.Source.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("source.timeout: %w", err))
		}
	}

	if strings.TrimSpace(c.Cache.File) == "" {
		errs = append(errs, fmt.Errorf("cache.file must not be empty"))
	}

	if hc := c.Notifications.HealthchecksURL; hc != "" {
		if _, err := url.ParseRequestURI(hc); err != nil {
			errs = append(errs, fmt.Errorf("notifications.healthchecksUrl: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
