package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath               = "."
	defaultAPITimeout         = 30 * time.Second
	defaultSessionFile        = ".assettrack/session.yaml"
	defaultAddressPlaceholder = "Address unavailable"
	defaultGeocodeWorkers     = 4
	defaultMaxRequestBodySize = "10M"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port int `json:"port" yaml:"port"`
		// MaxRequestBodySize bounds request bodies, e.g. "10M"; imports are the largest
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// API points at the remote asset backend
	API *APIConfig `json:"api" yaml:"api"`

	Session *SessionConfig `json:"session" yaml:"session"`

	TagGeneration *TagGenerationConfig `json:"tagGeneration" yaml:"tagGeneration"`

	// QRCode configuration for locally rendered tag labels
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`

	Geocoding *GeocodingConfig `json:"geocoding" yaml:"geocoding"`

	Export *ExportConfig `json:"export" yaml:"export"`

	Assets *AssetsConfig `json:"assets" yaml:"assets"`

	// PubSub configuration for asset event publishing
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// Worker receives Pub/Sub pushes from the backend
	Worker *WorkerConfig `json:"worker" yaml:"worker"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// APIConfig defines how the backend asset API is reached
type APIConfig struct {
	BaseURL   string        `json:"baseUrl" yaml:"baseUrl"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
	UserAgent string        `json:"userAgent" yaml:"userAgent"`
}

// SessionConfig defines where a remembered auth token is persisted
type SessionConfig struct {
	File string `json:"file" yaml:"file"`
}

// TagGenerationConfig tunes the wait between a tag generation request and
// the asset re-fetch that picks up the server generated image.
type TagGenerationConfig struct {
	// Fixed wait before the first re-fetch
	InitialDelay time.Duration `json:"initialDelay" yaml:"initialDelay"`

	// Backoff between subsequent re-fetch attempts
	InitialInterval time.Duration `json:"initialInterval" yaml:"initialInterval"`
	MaxInterval     time.Duration `json:"maxInterval" yaml:"maxInterval"`

	// Overall polling budget; the flow fails once it is spent
	MaxElapsed time.Duration `json:"maxElapsed" yaml:"maxElapsed"`
}

// QRCodeConfig defines QR code rendering configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// GeocodingConfig defines the reverse/forward geocoding provider
type GeocodingConfig struct {
	// Provider type: "google" or empty to disable geocoding
	Provider string        `json:"provider" yaml:"provider"`
	Endpoint string        `json:"endpoint" yaml:"endpoint"`
	APIKey   string        `json:"apiKey" yaml:"apiKey"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// ExportConfig defines report export behaviour
type ExportConfig struct {
	// Optional gocloud.dev bucket URL (file://, mem://, s3://) that receives exported artifacts
	BucketURL          string `json:"bucketUrl" yaml:"bucketUrl"`
	GeocodeConcurrency int    `json:"geocodeConcurrency" yaml:"geocodeConcurrency"`
	AddressPlaceholder string `json:"addressPlaceholder" yaml:"addressPlaceholder"`
}

// AssetsConfig defines client-side validation rules for asset submission
type AssetsConfig struct {
	RequireAssignment bool `json:"requireAssignment" yaml:"requireAssignment"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// WorkerConfig defines the Pub/Sub push receiver. Port 0 disables it.
type WorkerConfig struct {
	Port int `json:"port" yaml:"port"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	configFile, found := findConfigFile(currEnv, searchPaths)
	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Example: API_BASEURL -> api.baseUrl
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults fills optional sections so that callers never see nil pointers.
func (c *Config) applyDefaults() error {
	if c.API == nil || strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.baseUrl is required")
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.Timeout <= 0 {
		c.API.Timeout = defaultAPITimeout
	}

	if c.HTTP.MaxRequestBodySize == "" {
		c.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if c.Session == nil {
		c.Session = &SessionConfig{}
	}
	if c.Session.File == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "resolve home directory")
		}
		c.Session.File = filepath.Join(home, defaultSessionFile)
	}

	if c.TagGeneration == nil {
		c.TagGeneration = &TagGenerationConfig{}
	}
	if c.TagGeneration.InitialDelay <= 0 {
		c.TagGeneration.InitialDelay = 2 * time.Second
	}
	if c.TagGeneration.InitialInterval <= 0 {
		c.TagGeneration.InitialInterval = 500 * time.Millisecond
	}
	if c.TagGeneration.MaxInterval <= 0 {
		c.TagGeneration.MaxInterval = 5 * time.Second
	}
	if c.TagGeneration.MaxElapsed <= 0 {
		c.TagGeneration.MaxElapsed = 30 * time.Second
	}

	if c.QRCode == nil {
		c.QRCode = &QRCodeConfig{Size: 256, ErrorCorrectionLevel: "M"}
	}

	if c.Geocoding == nil {
		c.Geocoding = &GeocodingConfig{}
	}
	if c.Geocoding.Timeout <= 0 {
		c.Geocoding.Timeout = 10 * time.Second
	}

	if c.Export == nil {
		c.Export = &ExportConfig{}
	}
	if c.Export.GeocodeConcurrency <= 0 {
		c.Export.GeocodeConcurrency = defaultGeocodeWorkers
	}
	if c.Export.AddressPlaceholder == "" {
		c.Export.AddressPlaceholder = defaultAddressPlaceholder
	}

	if c.Assets == nil {
		c.Assets = &AssetsConfig{}
	}

	if c.PubSub == nil {
		c.PubSub = &PubSubConfig{}
	}

	if c.Worker == nil {
		c.Worker = &WorkerConfig{}
	}

	return nil
}

func findConfigFile(currEnv string, searchPaths []string) (string, bool) {
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	return "", false
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
