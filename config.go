package monetdbe

import (
	"net/url"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// InMemory is the database directory that selects a purely in-memory database.
const InMemory = ":memory:"

// Options are handed to the engine when a database is opened. Zero values
// leave the engine defaults in place.
type Options struct {
	MemoryLimit    int `mapstructure:"memorylimit" yaml:"memorylimit"`
	QueryTimeout   int `mapstructure:"querytimeout" yaml:"querytimeout"`
	SessionTimeout int `mapstructure:"sessiontimeout" yaml:"sessiontimeout"`
	NrThreads      int `mapstructure:"nr_threads" yaml:"nr_threads"`
}

func (o Options) isZero() bool {
	return o == Options{}
}

// Config configures a session.
type Config struct {
	Options `mapstructure:",squash" yaml:",inline"`
	// Library is the path of the libmonetdbe shared library. Empty selects
	// $MONETDBE_LIBRARY or the platform default.
	Library string `mapstructure:"library" yaml:"library"`
}

// DecodeConfig decodes option values, e.g. from a DSN or a YAML document,
// into a Config. String values are converted to the field types; unknown
// keys are rejected.
func DecodeConfig(values map[string]any) (Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, err
	}
	if err := decoder.Decode(values); err != nil {
		return cfg, programmingError(errInvalidOption, "%s", err.Error())
	}
	return cfg, nil
}

// ParseDSN splits a data source name of the form
// "<dbdir>[?option=value&...]" into the database directory and its Config.
// An empty directory or ":memory:" selects an in-memory database.
func ParseDSN(dsn string) (string, Config, error) {
	dbdir, rawQuery, _ := strings.Cut(dsn, "?")
	if dbdir == InMemory {
		dbdir = ""
	}

	// Early-out, if the DSN does not contain configuration options.
	if len(rawQuery) == 0 {
		return dbdir, Config{}, nil
	}

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", Config{}, programmingError(errParseDSN, "%s", err.Error())
	}

	values := make(map[string]any, len(query))
	for k, v := range query {
		if len(v) == 0 {
			continue
		}
		values[k] = v[0]
	}

	cfg, err := DecodeConfig(values)
	if err != nil {
		return "", Config{}, err
	}
	return dbdir, cfg, nil
}
