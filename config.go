package clasp

import (
	"runtime"

	"github.com/evergreen-ci/clasp/segmentation"
	"github.com/evergreen-ci/clasp/util"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
)

const (
	defaultQueueSize        = 1024
	defaultServicePort      = 3000
	defaultMaxCachedResults = 1000
)

// Configuration holds the settings of the service and the defaults of
// every segmentation it runs.
type Configuration struct {
	NumWorkers       int                  `bson:"num_workers" json:"num_workers" yaml:"num_workers"`
	QueueSize        int                  `bson:"queue_size" json:"queue_size" yaml:"queue_size"`
	MaxCachedResults int                  `bson:"max_cached_results" json:"max_cached_results" yaml:"max_cached_results"`
	Service          ServiceConfig        `bson:"service" json:"service" yaml:"service"`
	Segmentation     segmentation.Options `bson:"segmentation" json:"segmentation" yaml:"segmentation"`
	// IncludeProfiles keeps the whole-sequence score profile in
	// stored results.
	IncludeProfiles bool `bson:"include_profiles" json:"include_profiles" yaml:"include_profiles"`
}

type ServiceConfig struct {
	Port int `bson:"port" json:"port" yaml:"port"`
	// MaxSeriesLength rejects larger requests. Zero disables the limit.
	MaxSeriesLength int `bson:"max_series_length" json:"max_series_length" yaml:"max_series_length"`
}

// DefaultConfiguration returns a configuration that passes validation.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		NumWorkers:       runtime.NumCPU(),
		QueueSize:        defaultQueueSize,
		MaxCachedResults: defaultMaxCachedResults,
		Service:          ServiceConfig{Port: defaultServicePort},
		Segmentation:     segmentation.DefaultOptions(),
	}
}

// LoadConfiguration reads a YAML configuration file. Settings missing
// from the file keep their defaults.
func LoadConfiguration(path string) (*Configuration, error) {
	conf := DefaultConfiguration()
	if err := util.ReadFileYAML(path, conf); err != nil {
		return nil, errors.Wrap(err, "problem reading configuration")
	}

	if err := conf.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid configuration in '%s'", path)
	}

	return conf, nil
}

func (c *Configuration) Validate() error {
	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.MaxCachedResults <= 0 {
		c.MaxCachedResults = defaultMaxCachedResults
	}
	if c.Service.Port == 0 {
		c.Service.Port = defaultServicePort
	}

	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(c.NumWorkers < 1, "must specify a valid number of amboy workers")
	catcher.NewWhen(c.Service.Port < 0 || c.Service.Port > 65535, "service port must be within [0,65535]")
	catcher.NewWhen(c.Service.MaxSeriesLength < 0, "max series length must not be negative")
	catcher.Wrap(c.Segmentation.Validate(), "invalid segmentation defaults")

	return catcher.Resolve()
}

// SegmentationOptions returns a copy of the default segmentation
// options.
func (c *Configuration) SegmentationOptions() segmentation.Options {
	return c.Segmentation
}
