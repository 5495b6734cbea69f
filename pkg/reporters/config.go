package reporters

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/scrafurl/pkg/httpclient"
	"gopkg.in/yaml.v3"
)

const (
	// Supported reporter types.
	TypeHTTP   = "http"
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"

	httpDefaultMethod         = httpclient.MethodPost
	httpDefaultTimeoutSeconds = 5
)

type configFile struct {
	Reporters []ReporterConfig `json:"reporters" yaml:"reporters"`
}

// ReporterConfig is a single reporter entry declared in the reporters file.
type ReporterConfig struct {
	ID      string        `json:"id" yaml:"id"`
	Type    string        `json:"type" yaml:"type"`
	Enabled *bool         `json:"enabled" yaml:"enabled"`
	HTTP    *HTTPConfig   `json:"http" yaml:"http"`
	SQS     *SQSConfig    `json:"sqs" yaml:"sqs"`
	SNS     *SNSConfig    `json:"sns" yaml:"sns"`
	PubSub  *PubSubConfig `json:"pubsub" yaml:"pubsub"`
}

// HTTPConfig posts exchange records to a webhook. Headers are header lines
// ("Name: value") applied in order.
type HTTPConfig struct {
	URL            string   `json:"url" yaml:"url"`
	Method         string   `json:"method" yaml:"method"`
	Headers        []string `json:"headers" yaml:"headers"`
	TimeoutSeconds int      `json:"timeout_seconds" yaml:"timeout_seconds"`
	HTTPVersion    string   `json:"http_version" yaml:"http_version"`
}

// AWSConfig carries the settings shared by the SQS and SNS reporters.
// Static keys are optional; the default credential chain is used otherwise.
type AWSConfig struct {
	Region    string `json:"region" yaml:"region"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
}

// SQSConfig holds AWS SQS settings.
type SQSConfig struct {
	QueueURL  string `json:"uri" yaml:"uri"`
	AWSConfig `json:",inline" yaml:",inline"`
}

// SNSConfig holds AWS SNS settings.
type SNSConfig struct {
	TopicARN  string `json:"topic_arn" yaml:"topic_arn"`
	AWSConfig `json:",inline" yaml:",inline"`
}

// PubSubConfig holds Google Cloud Pub/Sub settings.
type PubSubConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
}

// ConfigRegistry holds reporter definitions loaded from a file.
type ConfigRegistry struct {
	reporters []ReporterConfig
	idx       map[string]int
}

// LoadRegistry loads reporter definitions from a YAML/JSON file.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("reporters file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reporters file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read reporters file: %w", err)
	}

	parsed, err := parseConfigFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Reporters) == 0 {
		return nil, errors.New("reporters file contains no reporters entries")
	}

	reg := &ConfigRegistry{
		reporters: make([]ReporterConfig, len(parsed.Reporters)),
		idx:       make(map[string]int, len(parsed.Reporters)),
	}
	for i := range parsed.Reporters {
		cfg := sanitizeConfig(parsed.Reporters[i])
		if err := validateConfig(cfg); err != nil {
			return nil, fmt.Errorf("reporters[%d]: %w", i, err)
		}
		if _, exists := reg.idx[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate reporter id %q", cfg.ID)
		}
		reg.reporters[i] = cfg
		reg.idx[cfg.ID] = i
	}
	return reg, nil
}

func parseConfigFile(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var cf configFile
		if err := d.fn(data, &cf); err != nil {
			lastErr = fmt.Errorf("decode %s reporters: %w", d.name, err)
			continue
		}
		return cf, nil
	}
	if lastErr != nil {
		return configFile{}, lastErr
	}
	return configFile{}, errors.New("reporters file format not recognized (expected YAML or JSON)")
}

func sanitizeConfig(cfg ReporterConfig) ReporterConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = string(httpDefaultMethod)
		}
		c.Headers = sanitizeHeaderLines(c.Headers)
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &c
	}
	if cfg.SQS != nil {
		c := *cfg.SQS
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		c.AWSConfig = sanitizeAWS(c.AWSConfig)
		cfg.SQS = &c
	}
	if cfg.SNS != nil {
		c := *cfg.SNS
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		c.AWSConfig = sanitizeAWS(c.AWSConfig)
		cfg.SNS = &c
	}
	if cfg.PubSub != nil {
		c := *cfg.PubSub
		c.ProjectID = strings.TrimSpace(c.ProjectID)
		c.Topic = strings.TrimSpace(c.Topic)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
		c.Endpoint = strings.TrimSpace(c.Endpoint)
		cfg.PubSub = &c
	}
	return cfg
}

func sanitizeAWS(c AWSConfig) AWSConfig {
	c.Region = strings.TrimSpace(c.Region)
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.AccessKey = strings.TrimSpace(c.AccessKey)
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	return c
}

// sanitizeHeaderLines trims lines and drops blank ones, keeping order.
func sanitizeHeaderLines(lines []string) []string {
	out := lines[:0:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func validateConfig(cfg ReporterConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case "":
		return fmt.Errorf("type is required for reporter %q", cfg.ID)
	case TypeHTTP:
		if cfg.HTTP == nil || cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for reporter %q", cfg.ID)
		}
		m, err := httpclient.ParseMethod(cfg.HTTP.Method)
		if err != nil || !m.CarriesBody() {
			return fmt.Errorf("http.method must be POST, PUT or PATCH for reporter %q", cfg.ID)
		}
		if _, err := httpclient.ParseHTTPVersion(cfg.HTTP.HTTPVersion); err != nil {
			return fmt.Errorf("reporter %q: %w", cfg.ID, err)
		}
	case TypeSQS:
		if cfg.SQS == nil || cfg.SQS.QueueURL == "" {
			return fmt.Errorf("sqs.uri is required for reporter %q", cfg.ID)
		}
		if cfg.SQS.Region == "" {
			return fmt.Errorf("sqs.region is required for reporter %q", cfg.ID)
		}
	case TypeSNS:
		if cfg.SNS == nil || cfg.SNS.TopicARN == "" {
			return fmt.Errorf("sns.topic_arn is required for reporter %q", cfg.ID)
		}
		if cfg.SNS.Region == "" {
			return fmt.Errorf("sns.region is required for reporter %q", cfg.ID)
		}
	case TypePubSub:
		if cfg.PubSub == nil || cfg.PubSub.ProjectID == "" || cfg.PubSub.Topic == "" {
			return fmt.Errorf("pubsub.project_id and pubsub.topic are required for reporter %q", cfg.ID)
		}
	}
	return nil
}

// ByID returns the reporter config with the given id.
func (r *ConfigRegistry) ByID(id string) (ReporterConfig, bool) {
	if r == nil {
		return ReporterConfig{}, false
	}
	i, ok := r.idx[strings.TrimSpace(id)]
	if !ok {
		return ReporterConfig{}, false
	}
	return r.reporters[i], true
}

// Enabled returns the reporters that are switched on, in file order.
func (r *ConfigRegistry) Enabled() []ReporterConfig {
	if r == nil {
		return nil
	}
	out := make([]ReporterConfig, 0, len(r.reporters))
	for _, cfg := range r.reporters {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns the enabled flag, defaulting to true.
func (cfg ReporterConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}
