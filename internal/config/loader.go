package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Load reads the configuration from the environment, applies tag defaults
// and validates the result.
func Load() (*Config, error) {
	return load(os.LookupEnv)
}

// lookupFunc reports the value of an environment variable and whether it is set.
type lookupFunc func(name string) (string, bool)

func load(lookup lookupFunc) (*Config, error) {
	cfg := &Config{}
	if err := fill(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// fill walks the section structs of v and sets every field that has an env tag.
// The envAlt variable is consulted when env is unset or empty.
func fill(v reflect.Value, lookup lookupFunc) error {
	t := v.Type()
	for i := range t.NumField() {
		field, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			if err := fill(fv, lookup); err != nil {
				return err
			}
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}
		raw := firstSet(lookup, name, field.Tag.Get("envAlt"))
		if raw == "" {
			if field.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", name)
			}
			raw = field.Tag.Get("default")
		}
		if raw == "" {
			continue
		}
		if err := assign(fv, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, raw, err)
		}
	}
	return nil
}

func firstSet(lookup lookupFunc, names ...string) string {
	for _, n := range names {
		if n == "" {
			continue
		}
		if v, ok := lookup(n); ok && v != "" {
			return v
		}
	}
	return ""
}

// assign parses raw into fv according to its type. Slices of strings are
// comma separated with blanks dropped.
func assign(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		fv.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		fv.SetBool(b)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", fv.Type().Elem().Kind())
		}
		var items []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		fv.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("unsupported field type: %s", fv.Kind())
	}
	return nil
}

// problems collects validation failures across sections.
type problems []string

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		p.addf(format, args...)
	}
}

// Validate checks every section and reports all failures in one error.
func (c *Config) Validate() error {
	var p problems
	c.validateStore(&p)
	c.Session.validate(&p)
	c.Server.validate(&p)
	c.Import.validate(&p)
	c.Rate.validate(&p)
	c.Security.validate(&p)
	c.Logging.validate(&p)
	p.check(!c.Metrics.Enabled || strings.HasPrefix(c.Metrics.Path, "/"),
		"METRICS_PATH (%q) must start with /", c.Metrics.Path)

	if len(p) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
	}
	return nil
}

func (c *Config) validateStore(p *problems) {
	switch strings.ToLower(c.Store.Driver) {
	case "memory":
	case "postgres":
		db := c.Database
		p.check(db.URL != "", "DATABASE_URL is required when STORE_DRIVER=postgres")
		p.check(db.MaxConns > 0, "DB_MAX_CONNS must be positive")
		p.check(db.MinConns >= 0, "DB_MIN_CONNS must be non-negative")
		p.check(db.MaxConns >= db.MinConns, "DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", db.MaxConns, db.MinConns)
	default:
		p.addf("STORE_DRIVER (%q) must be one of: memory, postgres", c.Store.Driver)
	}
}

func (s SessionConfig) validate(p *problems) {
	switch strings.ToLower(s.Driver) {
	case "memory":
		p.check(s.SweepInterval > 0, "SESSION_SWEEP_INTERVAL must be positive")
	case "redis":
		p.check(s.RedisAddr != "", "REDIS_ADDR is required when SESSION_DRIVER=redis")
	default:
		p.addf("SESSION_DRIVER (%q) must be one of: memory, redis", s.Driver)
	}
	p.check(s.TTL > 0, "SESSION_TTL must be positive")
}

func (s ServerConfig) validate(p *problems) {
	p.check(s.Port > 0 && s.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", s.Port)
	p.check(s.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(s.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")
}

func (i ImportConfig) validate(p *problems) {
	p.check(i.MaxFileSize > 0, "IMPORT_MAX_FILE_SIZE must be positive")
	p.check(i.MaxConcurrent > 0, "IMPORT_MAX_CONCURRENT must be positive")
	p.check(i.MaxWaitTime > 0, "IMPORT_MAX_WAIT_TIME must be positive")
	p.check(i.Timeout > 0, "IMPORT_TIMEOUT must be positive")
}

func (r RateLimitConfig) validate(p *problems) {
	if !r.Enabled {
		return
	}
	p.check(r.RequestsPerMinute > 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	p.check(r.ImportLimit > 0, "RATE_LIMIT_IMPORT must be positive when rate limiting is enabled")
}

func (s SecurityConfig) validate(p *problems) {
	p.check(!s.RequireAPIKey || len(s.APIKeys) > 0,
		"REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
}

func (l LoggingConfig) validate(p *problems) {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		p.addf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		p.addf("LOG_FORMAT (%q) must be one of: text, json", l.Format)
	}
}

// String describes the configuration for logs with the database URL and
// API keys masked.
func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Config{Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Store: {Driver: %q}, ", c.Store.Driver)
	if c.Database.URL != "" {
		fmt.Fprintf(&b, "Database: {URL: [MASKED], MaxConns: %d, MinConns: %d}, ",
			c.Database.MaxConns, c.Database.MinConns)
	}
	fmt.Fprintf(&b, "Session: {Driver: %q, TTL: %s}, ", c.Session.Driver, c.Session.TTL)
	fmt.Fprintf(&b, "Import: {MaxFileSize: %d, MaxConcurrent: %d, Timeout: %s}, ",
		c.Import.MaxFileSize, c.Import.MaxConcurrent, c.Import.Timeout)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d, ImportLimit: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.ImportLimit)
	fmt.Fprintf(&b, "Security: {RequireAPIKey: %v, APIKeys: %d configured}, ",
		c.Security.RequireAPIKey, len(c.Security.APIKeys))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}}", c.Logging.Level, c.Logging.Format)
	return b.String()
}
