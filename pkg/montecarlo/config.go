package montecarlo

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/gilchrisn/immunization-sim/pkg/centrality"
	"github.com/gilchrisn/immunization-sim/pkg/epidemic"
)

// Config manages simulation configuration using Viper
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Simulation parameters
	v.SetDefault("simulation.node_count", 10)
	v.SetDefault("simulation.edge_probability", 0.5)
	v.SetDefault("simulation.infection_rate", 0.1)
	v.SetDefault("simulation.days", 3)
	v.SetDefault("simulation.trials", 100000)
	v.SetDefault("simulation.measures", measureStrings(centrality.DefaultMeasures))

	// Algorithm parameters
	v.SetDefault("algorithm.random_seed", time.Now().UnixNano())
	v.SetDefault("algorithm.eigenvector_max_iterations", 100)
	v.SetDefault("algorithm.eigenvector_tolerance", 1e-6)

	// Performance parameters
	v.SetDefault("performance.num_workers", runtime.NumCPU())

	// Logging parameters
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.progress_interval", 10000)
	v.SetDefault("logging.enable_progress", true)

	v.SetDefault("storage.db_path", "")

	v.SetEnvPrefix("IMMUNESIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Getters for simulation parameters
func (c *Config) NodeCount() int { return c.v.GetInt("simulation.node_count") }
func (c *Config) EdgeProbability() float64 { return c.v.GetFloat64("simulation.edge_probability") }
func (c *Config) InfectionRate() float64 { return c.v.GetFloat64("simulation.infection_rate") }
func (c *Config) Days() int { return c.v.GetInt("simulation.days") }
func (c *Config) Trials() int { return c.v.GetInt("simulation.trials") }
func (c *Config) Measures() []string { return c.v.GetStringSlice("simulation.measures") }

func (c *Config) RandomSeed() int64 { return c.v.GetInt64("algorithm.random_seed") }
func (c *Config) EigenvectorMaxIterations() int { return c.v.GetInt("algorithm.eigenvector_max_iterations") }
func (c *Config) EigenvectorTolerance() float64 { return c.v.GetFloat64("algorithm.eigenvector_tolerance") }

func (c *Config) NumWorkers() int { return c.v.GetInt("performance.num_workers") }

func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }
func (c *Config) ProgressInterval() int { return c.v.GetInt("logging.progress_interval") }
func (c *Config) EnableProgress() bool { return c.v.GetBool("logging.enable_progress") }

func (c *Config) DBPath() string { return c.v.GetString("storage.db_path") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// Registry returns a measure registry whose eigenvector measure uses the
// configured iteration budget.
func (c *Config) Registry() *centrality.Registry {
	registry := centrality.NewRegistry()
	registry.Register(centrality.EigenvectorMeasure{
		MaxIterations: c.EigenvectorMaxIterations(),
		Tolerance:     c.EigenvectorTolerance(),
	})
	return registry
}

// Params builds trial parameters for one measure.
func (c *Config) Params(measure centrality.Measure) epidemic.Params {
	return epidemic.Params{
		NodeCount:       c.NodeCount(),
		EdgeProbability: c.EdgeProbability(),
		InfectionRate:   c.InfectionRate(),
		Days:            c.Days(),
		Measure:         measure,
	}
}

// Options builds aggregate run options.
func (c *Config) Options() Options {
	interval := 0
	if c.EnableProgress() {
		interval = c.ProgressInterval()
	}
	return Options{
		Trials:           c.Trials(),
		Workers:          c.NumWorkers(),
		Seed:             uint64(c.RandomSeed()),
		ProgressInterval: interval,
	}
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "immunesim").Logger()
}

func measureStrings(names []centrality.MeasureName) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = string(name)
	}
	return out
}
