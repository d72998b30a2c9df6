package internal

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/beidekit/internal/beide"
	"github.com/starford/beidekit/internal/storage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Byte order settings for the project reader.
const (
	ByteOrderAuto   = "auto"
	ByteOrderBig    = "big"
	ByteOrderLittle = "little"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Workspace WorkspaceConfig   `yaml:"workspace"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	Parser    ParserConfig      `yaml:"parser"`
	Events    EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Workspace.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Parser.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// WorkspaceConfig points at the directory tree holding project files.
type WorkspaceConfig struct {
	Path      string `yaml:"path"`
	Extension string `yaml:"extension"`
}

// Validate validates the workspace configuration.
func (c *WorkspaceConfig) Validate() error {
	if c.Extension == "" {
		c.Extension = storage.DefaultExtension
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Extension, validation.By(func(any) error {
			if strings.ContainsAny(c.Extension, `/\`) {
				return fmt.Errorf("must not contain path separators")
			}
			return nil
		})),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// ParserConfig controls how project files are decoded.
//
// ByteOrder is "auto" (detect from the header record, big-endian without
// one), "big" or "little".
type ParserConfig struct {
	ByteOrder string `yaml:"byte_order"`
}

// Validate validates the parser configuration.
func (c *ParserConfig) Validate() error {
	if c.ByteOrder == "" {
		c.ByteOrder = ByteOrderAuto
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.ByteOrder, validation.In(ByteOrderAuto, ByteOrderBig, ByteOrderLittle)),
	)
}

// LoadOptions returns the project reader options for this configuration.
func (c *ParserConfig) LoadOptions() []beide.Option {
	order, _ := ParseByteOrder(c.ByteOrder)
	if order == nil {
		return nil
	}
	return []beide.Option{beide.WithByteOrder(order)}
}

// ParseByteOrder maps a byte order setting to a binary.ByteOrder. "auto" and
// "" return nil, meaning detect.
func ParseByteOrder(s string) (binary.ByteOrder, error) {
	switch strings.ToLower(s) {
	case "", ByteOrderAuto:
		return nil, nil
	case ByteOrderBig, "be":
		return binary.BigEndian, nil
	case ByteOrderLittle, "le":
		return binary.LittleEndian, nil
	}
	return nil, fmt.Errorf("unknown byte order %q (want auto, big or little)", s)
}

// EventsConfig tunes the server-sent events stream.
type EventsConfig struct {
	CatalogThrottle time.Duration `yaml:"catalog_throttle"`
	Heartbeat       time.Duration `yaml:"heartbeat"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CatalogThrottle, validation.Min(time.Duration(0))),
		validation.Field(&c.Heartbeat, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Workspace: WorkspaceConfig{
			Path:      "./workspace",
			Extension: storage.DefaultExtension,
		},
		SQLite: SQLiteConfig{
			Path: "./beidekit.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Parser: ParserConfig{
			ByteOrder: ByteOrderAuto,
		},
		Events: EventsConfig{
			CatalogThrottle: 2 * time.Second,
			Heartbeat:       30 * time.Second,
		},
	}
}
