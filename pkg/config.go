package dupescan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-ini/ini"
)

// Config represents the dupescan configuration
type Config struct {
	configPath string
	ini        *ini.File
}

// HashConfig represents full-digest algorithm configuration
type HashConfig struct {
	Default string // Default hash algorithm: sha1, sha256, sha512
}

// SamplingConfig represents large-file fingerprint configuration
type SamplingConfig struct {
	Threshold string // Size above which files are fingerprinted first (e.g. "20M")
	Window    string // Base sample window per offset (e.g. "1M")
}

// ResolverConfig represents keep/delete policy configuration
type ResolverConfig struct {
	KeepKeyword string // Path marker that wins resolution (case-insensitive)
}

// PerformanceConfig represents performance-related configuration
type PerformanceConfig struct {
	HashWorkers int    // Number of concurrent hash workers (default: 4)
	HashBuffer  string // Streaming hash buffer size (default: "2M")
}

// ScanConfigFile represents filesystem scan configuration
type ScanConfigFile struct {
	MinSize    string // Minimum file size to consider (e.g. "10K")
	SkipImages bool   // Skip common image extensions
}

// OutputConfig represents output format configuration
type OutputConfig struct {
	Format string // Default output format: human, json
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // Default verbose level (0=quiet, 1=basic, 2=detailed, 3=trace)
	Debug string // Default debug flags (comma-separated)
}

// AllConfig represents all configuration options
type AllConfig struct {
	Hash        *HashConfig
	Sampling    *SamplingConfig
	Resolver    *ResolverConfig
	Performance *PerformanceConfig
	Scan        *ScanConfigFile
	Output      *OutputConfig
	Verbose     *VerboseConfig
}

// LoadConfig loads configuration from the .dupescan/config file
func LoadConfig(metaDir string) (*Config, error) {
	configPath := filepath.Join(metaDir, "config")

	cfg := &Config{
		configPath: configPath,
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Create default config
		cfg.ini = ini.Empty()
		if err := cfg.setDefaults(); err != nil {
			return nil, fmt.Errorf("failed to set default config: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	} else {
		iniFile, err := ini.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		cfg.ini = iniFile
	}

	return cfg, nil
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	defaults := []struct {
		section string
		key     string
		value   string
	}{
		{"filehash", "default", "sha256"},
		{"sampling", "threshold", "20M"},
		{"sampling", "window", "1M"},
		{"resolver", "keep_keyword", DefaultKeepKeyword},
		{"performance", "hash_workers", "4"},
		{"performance", "hash_buffer", "2M"},
		{"scan", "min_size", "10K"},
		{"scan", "skip_images", "true"},
		{"output", "format", "human"},
		{"verbose", "level", "0"},
		{"verbose", "debug", ""},
	}

	for _, d := range defaults {
		section, err := c.ini.NewSection(d.section)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", d.section, err)
		}
		if _, err := section.NewKey(d.key, d.value); err != nil {
			return fmt.Errorf("failed to set default %s.%s: %w", d.section, d.key, err)
		}
	}

	return nil
}

// GetHashConfig returns the hash configuration
func (c *Config) GetHashConfig() *HashConfig {
	hashConfig := &HashConfig{
		Default: "sha256", // fallback default
	}

	if c.ini.HasSection("filehash") {
		section := c.ini.Section("filehash")
		if section.HasKey("default") {
			hashConfig.Default = section.Key("default").String()
		}
	}

	return hashConfig
}

// GetSamplingConfig returns the sampling configuration
func (c *Config) GetSamplingConfig() *SamplingConfig {
	samplingConfig := &SamplingConfig{
		Threshold: "20M", // fallback default
		Window:    "1M",  // fallback default
	}

	if c.ini.HasSection("sampling") {
		section := c.ini.Section("sampling")
		if section.HasKey("threshold") {
			if v := section.Key("threshold").String(); v != "" {
				samplingConfig.Threshold = v
			}
		}
		if section.HasKey("window") {
			if v := section.Key("window").String(); v != "" {
				samplingConfig.Window = v
			}
		}
	}

	return samplingConfig
}

// GetResolverConfig returns the resolver configuration
func (c *Config) GetResolverConfig() *ResolverConfig {
	resolverConfig := &ResolverConfig{
		KeepKeyword: DefaultKeepKeyword, // fallback default
	}

	if c.ini.HasSection("resolver") {
		section := c.ini.Section("resolver")
		if section.HasKey("keep_keyword") {
			if v := section.Key("keep_keyword").String(); v != "" {
				resolverConfig.KeepKeyword = v
			}
		}
	}

	return resolverConfig
}

// GetPerformanceConfig returns the performance configuration
func (c *Config) GetPerformanceConfig() *PerformanceConfig {
	performanceConfig := &PerformanceConfig{
		HashWorkers: DefaultHashWorkers, // fallback default
		HashBuffer:  "2M",               // fallback default
	}

	if c.ini.HasSection("performance") {
		section := c.ini.Section("performance")
		if section.HasKey("hash_workers") {
			if workers, err := section.Key("hash_workers").Int(); err == nil {
				performanceConfig.HashWorkers = workers
			}
		}
		if section.HasKey("hash_buffer") {
			if bufferSize := section.Key("hash_buffer").String(); bufferSize != "" {
				performanceConfig.HashBuffer = bufferSize
			}
		}
	}

	return performanceConfig
}

// GetScanConfig returns the scan configuration
func (c *Config) GetScanConfig() *ScanConfigFile {
	scanConfig := &ScanConfigFile{
		MinSize:    "10K", // fallback default
		SkipImages: true,  // fallback default
	}

	if c.ini.HasSection("scan") {
		section := c.ini.Section("scan")
		if section.HasKey("min_size") {
			if v := section.Key("min_size").String(); v != "" {
				scanConfig.MinSize = v
			}
		}
		if section.HasKey("skip_images") {
			if v, err := section.Key("skip_images").Bool(); err == nil {
				scanConfig.SkipImages = v
			}
		}
	}

	return scanConfig
}

// GetOutputConfig returns the output configuration
func (c *Config) GetOutputConfig() *OutputConfig {
	outputConfig := &OutputConfig{
		Format: "human", // fallback default
	}

	if c.ini.HasSection("output") {
		section := c.ini.Section("output")
		if section.HasKey("format") {
			outputConfig.Format = section.Key("format").String()
		}
	}

	return outputConfig
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	verboseConfig := &VerboseConfig{
		Level: 0,  // fallback default
		Debug: "", // fallback default
	}

	if c.ini.HasSection("verbose") {
		section := c.ini.Section("verbose")
		if section.HasKey("level") {
			if level, err := section.Key("level").Int(); err == nil {
				verboseConfig.Level = level
			}
		}
		if section.HasKey("debug") {
			verboseConfig.Debug = section.Key("debug").String()
		}
	}

	return verboseConfig
}

// GetAllConfig returns all configuration options
func (c *Config) GetAllConfig() *AllConfig {
	return &AllConfig{
		Hash:        c.GetHashConfig(),
		Sampling:    c.GetSamplingConfig(),
		Resolver:    c.GetResolverConfig(),
		Performance: c.GetPerformanceConfig(),
		Scan:        c.GetScanConfig(),
		Output:      c.GetOutputConfig(),
		Verbose:     c.GetVerboseConfig(),
	}
}

// Set writes a single key. Unknown sections are created on demand.
func (c *Config) Set(sectionName, key, value string) error {
	section := c.ini.Section(sectionName)
	section.Key(key).SetValue(value)
	return nil
}

// Get reads a single raw key value; ok is false when it is absent.
func (c *Config) Get(sectionName, key string) (string, bool) {
	if !c.ini.HasSection(sectionName) {
		return "", false
	}
	section := c.ini.Section(sectionName)
	if !section.HasKey(key) {
		return "", false
	}
	return section.Key(key).String(), true
}

// Path returns the location of the config file.
func (c *Config) Path() string {
	return c.configPath
}

// Save writes the configuration back to disk
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := c.ini.SaveTo(c.configPath); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}
