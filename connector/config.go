package connector

import (
	"fmt"
	"maps"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// DefaultConnectTimeout bounds client construction when Config.ConnectTimeout
// is zero.
const DefaultConnectTimeout = 30 * time.Second

// Config is the connection configuration handed to Manager.Connect.
type Config struct {
	Database    string `json:"database" yaml:"database" koanf:"database"`
	InstanceID  string `json:"instance_id" yaml:"instance_id" koanf:"instance_id"`
	ProjectID   string `json:"project_id" yaml:"project_id" koanf:"project_id"`
	KeyFilename string `json:"key_filename" yaml:"key_filename" koanf:"key_filename"`

	// DialectOptions are passed through to the provider. They win over the
	// named fields above when both set the same key.
	DialectOptions map[string]any `json:"dialect_options" yaml:"dialect_options" koanf:"dialect_options"`

	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout" koanf:"connect_timeout"`

	// Timezone is used when parsing TIMESTAMP values. Empty keeps the
	// manager's current timezone.
	Timezone string `json:"timezone" yaml:"timezone" koanf:"timezone"`
}

func (c Config) connectTimeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return DefaultConnectTimeout
	}
	return c.ConnectTimeout
}

// Params is the merged option set a provider opens its client with. Keys are
// matched case-sensitively.
type Params struct {
	Database    string `mapstructure:"database"`
	InstanceID  string `mapstructure:"instanceId"`
	ProjectID   string `mapstructure:"projectId"`
	KeyFilename string `mapstructure:"keyFilename"`

	// Endpoint overrides the Spanner API endpoint, e.g. an emulator address.
	Endpoint     string `mapstructure:"endpoint"`
	UsePlainText bool   `mapstructure:"usePlainText"`
	UserAgent    string `mapstructure:"userAgent"`
	NumChannels  int    `mapstructure:"numChannels"`
	MinSessions  uint64 `mapstructure:"minSessions"`
	MaxSessions  uint64 `mapstructure:"maxSessions"`

	// PGAdapter address and TLS mode.
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	SSLMode string `mapstructure:"sslmode"`

	Extra map[string]any `mapstructure:",remain"`
}

// MergeParams builds the provider parameters of cfg. The named connection
// fields are laid down first and DialectOptions are applied over them.
func MergeParams(cfg Config) (Params, error) {
	raw := map[string]any{
		"database":    cfg.Database,
		"instanceId":  cfg.InstanceID,
		"projectId":   cfg.ProjectID,
		"keyFilename": cfg.KeyFilename,
	}
	maps.Copy(raw, cfg.DialectOptions)

	var p Params
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
		MatchName: func(mapKey, fieldName string) bool {
			return mapKey == fieldName
		},
	})
	if err != nil {
		return Params{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Params{}, fmt.Errorf("decode dialect options: %w", err)
	}
	return p, nil
}
