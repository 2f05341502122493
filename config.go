package depot

import (
	"github.com/BurntSushi/toml"
	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Config holds the process-wide defaults new storages start from.
var Config = globalConfig{
	storage: StorageConfig{
		InitialColumnCapacity: 16,
		LogLevel:              zerolog.WarnLevel.String(),
	},
}

type globalConfig struct {
	storage StorageConfig
}

// StorageConfig tunes a single Storage.
type StorageConfig struct {
	// InitialColumnCapacity is the row capacity each new column allocates up front.
	InitialColumnCapacity int `toml:"initial_column_capacity" config:"DEPOT_INITIAL_COLUMN_CAPACITY"`

	// RejectDuplicateComponents makes AddComponent fail with ComponentExistsError
	// instead of overwriting the existing value.
	RejectDuplicateComponents bool `toml:"reject_duplicate_components" config:"DEPOT_REJECT_DUPLICATE_COMPONENTS"`

	// LogLevel is a zerolog level name for the default logger.
	LogLevel string `toml:"log_level" config:"DEPOT_LOG_LEVEL"`
}

// Storage returns a copy of the default StorageConfig.
func (c *globalConfig) Storage() StorageConfig {
	return c.storage
}

// SetStorage replaces the default StorageConfig.
func (c *globalConfig) SetStorage(sc StorageConfig) {
	c.storage = sc
}

// SetInitialColumnCapacity changes the default column capacity.
func (c *globalConfig) SetInitialColumnCapacity(n int) {
	c.storage.InitialColumnCapacity = n
}

// SetLogLevel changes the default log level.
func (c *globalConfig) SetLogLevel(level zerolog.Level) {
	c.storage.LogLevel = level.String()
}

// LoadConfig starts from the defaults, applies the TOML file at path (if path
// is not empty) and then any DEPOT_* environment variables.
func LoadConfig(path string) (StorageConfig, error) {
	cfg := Config.Storage()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return StorageConfig{}, eris.Wrapf(err, "decode config file %s", path)
		}
	}
	if err := config.FromEnv().To(&cfg); err != nil {
		return StorageConfig{}, eris.Wrap(err, "read config from environment")
	}
	if err := cfg.validate(); err != nil {
		return StorageConfig{}, err
	}
	return cfg, nil
}

func (sc StorageConfig) validate() error {
	if sc.InitialColumnCapacity < 0 {
		return eris.Errorf("initial column capacity must not be negative, got %d", sc.InitialColumnCapacity)
	}
	if _, err := zerolog.ParseLevel(sc.LogLevel); err != nil {
		return eris.Wrapf(err, "invalid log level %q", sc.LogLevel)
	}
	return nil
}

// Level parses LogLevel, falling back to warn.
func (sc StorageConfig) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(sc.LogLevel)
	if err != nil {
		return zerolog.WarnLevel
	}
	return level
}
