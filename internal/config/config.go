package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	llmEndpointEnv = "LLM_ENDPOINT"
	llmModelEnv    = "LLM_MODEL"
	smtpServerEnv  = "SMTP_SERVER"
	outputDirEnv   = "DIGEST_OUTPUT_DIR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Collection CollectionConfig `yaml:"collection"`
	LLM        LLMConfig        `yaml:"llm"`
	Email      EmailConfig      `yaml:"email"`
	Output     OutputConfig     `yaml:"output"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Report     ReportConfig     `yaml:"report"`
	Categories []CategoryConfig `yaml:"categories"`
	Sources    []SourceConfig   `yaml:"sources"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines when the daily pass should run.
type SchedulerConfig struct {
	RunTime  string         `yaml:"runTime"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// CollectionConfig bounds collector behavior for one run.
type CollectionConfig struct {
	TimeoutSeconds  int `yaml:"timeoutSeconds"`
	IntervalSeconds int `yaml:"intervalSeconds"`
	MaxAgeHours     int `yaml:"maxAgeHours"`
}

// Timeout is the per-collector deadline within one run.
func (c CollectionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Interval is the minimum delay between requests to the same source.
func (c CollectionConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// MaxAge is the item freshness window; zero disables the filter.
func (c CollectionConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeHours) * time.Hour
}

// LLMConfig defines how to contact the analysis service.
type LLMConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	MaxRetries     int    `yaml:"maxRetries"`
	MaxInFlight    int    `yaml:"maxInFlight"`
}

// EmailConfig wires the SMTP submission endpoint and recipients. Credentials
// are injected at run time, never stored here.
type EmailConfig struct {
	Enabled    bool     `yaml:"enabled"`
	SMTPServer string   `yaml:"smtpServer"`
	SMTPPort   int      `yaml:"smtpPort"`
	Recipients []string `yaml:"recipients"`
}

// OutputConfig locates the date-keyed report artifacts.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LedgerConfig locates the run-ledger database.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// ReportConfig tunes highlight selection.
type ReportConfig struct {
	HighlightCount int    `yaml:"highlightCount"`
	RankSignal     string `yaml:"rankSignal"`
}

// CategoryConfig is one entry of the fixed, ordered category set.
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Title    string   `yaml:"title"`
	Keywords []string `yaml:"keywords"`
}

// SourceConfig describes a single declarative source.
type SourceConfig struct {
	Name    string            `yaml:"name"`
	Type    string            `yaml:"type"`
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Topics  []string          `yaml:"topics"`
	Limit   int               `yaml:"limit"`
	Options map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Categories) == 0 {
		cfg.Categories = defaultConfig().Categories
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(llmEndpointEnv); v != "" {
		c.LLM.Endpoint = v
	}

	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv(smtpServerEnv); v != "" {
		c.Email.SMTPServer = v
	}

	if v := os.Getenv(outputDirEnv); v != "" {
		c.Output.Dir = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Scheduler.RunTime != "" {
		base.Scheduler.RunTime = override.Scheduler.RunTime
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Collection.TimeoutSeconds != 0 {
		base.Collection.TimeoutSeconds = override.Collection.TimeoutSeconds
	}
	if override.Collection.IntervalSeconds != 0 {
		base.Collection.IntervalSeconds = override.Collection.IntervalSeconds
	}
	if override.Collection.MaxAgeHours != 0 {
		base.Collection.MaxAgeHours = override.Collection.MaxAgeHours
	}

	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.TimeoutSeconds != 0 {
		base.LLM.TimeoutSeconds = override.LLM.TimeoutSeconds
	}
	if override.LLM.MaxRetries != 0 {
		base.LLM.MaxRetries = override.LLM.MaxRetries
	}
	if override.LLM.MaxInFlight != 0 {
		base.LLM.MaxInFlight = override.LLM.MaxInFlight
	}

	if override.Email.SMTPServer != "" {
		base.Email = override.Email
	}

	if override.Output.Dir != "" {
		base.Output = override.Output
	}

	if override.Ledger.Path != "" {
		base.Ledger = override.Ledger
	}

	if override.Report.HighlightCount != 0 {
		base.Report.HighlightCount = override.Report.HighlightCount
	}
	if override.Report.RankSignal != "" {
		base.Report.RankSignal = override.Report.RankSignal
	}

	if len(override.Categories) > 0 {
		base.Categories = override.Categories
	}
	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:    LoggingConfig{Level: "info"},
		Scheduler:  SchedulerConfig{RunTime: "20:00", Timezone: defaultTimezone, location: tz},
		Collection: CollectionConfig{TimeoutSeconds: 120, IntervalSeconds: 2, MaxAgeHours: 24},
		LLM: LLMConfig{
			Endpoint:       "https://api.openai.com/v1/chat/completions",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 120,
			MaxRetries:     3,
			MaxInFlight:    2,
		},
		Email: EmailConfig{
			Enabled:    false,
			SMTPServer: "smtp.qq.com",
			SMTPPort:   587,
		},
		Output: OutputConfig{Dir: "data/reports"},
		Ledger: LedgerConfig{Path: "data/runs.db"},
		Report: ReportConfig{HighlightCount: 5, RankSignal: "stars"},
		Categories: []CategoryConfig{
			{Name: "model-progress", Title: "Large Model Progress", Keywords: []string{"gpt", "claude", "gemini", "llama", "qwen", "deepseek", "llm", "model", "benchmark", "reasoning"}},
			{Name: "multimodal", Title: "Multimodal Breakthroughs", Keywords: []string{"multimodal", "vision", "image", "video", "audio", "speech", "sora"}},
			{Name: "agents", Title: "Agent Ecosystem", Keywords: []string{"agent", "tool", "function calling", "mcp", "autonomous", "workflow", "computer use", "browser"}},
			{Name: "open-source", Title: "Open-Source Activity", Keywords: []string{"open source", "github", "release", "apache", "mit", "license", "huggingface", "weights"}},
			{Name: "business", Title: "Commercial Applications", Keywords: []string{"launch", "product", "company", "funding", "valuation", "acquisition", "api", "subscription"}},
		},
		Sources: []SourceConfig{
			{
				Name:    "GitHub Trending",
				Type:    "github",
				Enabled: true,
				URL:     "https://github.com/trending",
				Topics:  []string{"artificial-intelligence", "llm"},
				Limit:   5,
			},
			{
				Name:    "Hacker News AI",
				Type:    "rss",
				Enabled: true,
				URL:     "https://hnrss.org/newest?q=AI+OR+LLM",
				Limit:   15,
			},
		},
	}
}
