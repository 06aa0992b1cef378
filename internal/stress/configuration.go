package stress

import (
	"fmt"

	"github.com/bitmark-inc/logger"
	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"
)

// workload modes
const (
	ModeMixed       = "mixed"
	ModePartitioned = "partitioned"
	ModeOverlapping = "overlapping"
)

const (
	defaultWorkers       = 8
	defaultOperations    = 10000
	defaultKeySpace      = 1024
	defaultInsertPercent = 40
	defaultDeletePercent = 40

	defaultLogDirectory = "log"
	defaultLogFile      = "lflist-stress.log"
	defaultLogCount     = 10

	// logger.Initialise rejects smaller counts
	minimumLogCount = 10
	defaultLogSize      = 1024 * 1024
)

// Configuration describes one stress run.
type Configuration struct {
	Workers int `gluamapper:"workers" json:"workers"`
	// Operations is the number of operations each worker performs.
	Operations int    `gluamapper:"operations" json:"operations"`
	KeySpace   int    `gluamapper:"key_space" json:"key_space"`
	Mode       string `gluamapper:"mode" json:"mode"`

	// percentages of mixed mode operations, searches take the rest
	InsertPercent int `gluamapper:"insert_percent" json:"insert_percent"`
	DeletePercent int `gluamapper:"delete_percent" json:"delete_percent"`

	// RateLimit caps the operations per second of the whole run; zero
	// means unlimited.
	RateLimit float64 `gluamapper:"rate_limit" json:"rate_limit"`
	RateBurst int     `gluamapper:"rate_burst" json:"rate_burst"`

	Seed    int64                `gluamapper:"seed" json:"seed"`
	Logging logger.Configuration `gluamapper:"logging" json:"logging"`
}

// DefaultConfiguration returns the values used for anything a
// configuration file leaves out.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		Workers:       defaultWorkers,
		Operations:    defaultOperations,
		KeySpace:      defaultKeySpace,
		Mode:          ModeMixed,
		InsertPercent: defaultInsertPercent,
		DeletePercent: defaultDeletePercent,
		Seed:          1,
		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels: map[string]string{
				logger.DefaultTag: "info",
			},
		},
	}
}

// ParseConfigurationFile executes a Lua file and assigns the table it
// returns to config, then validates the result.
func ParseConfigurationFile(fileName string, config *Configuration) error {
	L := lua.NewState()
	defer L.Close()

	L.OpenLibs()

	// arg[0] = config file
	arg := &lua.LTable{}
	arg.Insert(0, lua.LString(fileName))
	L.SetGlobal("arg", arg)

	if err := L.DoFile(fileName); err != nil {
		return err
	}

	table, ok := L.Get(L.GetTop()).(*lua.LTable)
	if !ok {
		return fmt.Errorf("%w: %s does not return a table", ErrInvalidConfiguration, fileName)
	}

	mapper := gluamapper.Mapper{Option: gluamapper.Option{
		NameFunc: func(s string) string {
			return s
		},
		TagName: "gluamapper",
	}}
	if err := mapper.Map(table, config); err != nil {
		return err
	}
	return config.Validate()
}

// Validate checks that the configuration describes a runnable workload.
func (c *Configuration) Validate() error {
	switch {
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers: %d is not positive", ErrInvalidConfiguration, c.Workers)
	case c.Operations <= 0:
		return fmt.Errorf("%w: operations: %d is not positive", ErrInvalidConfiguration, c.Operations)
	case c.KeySpace <= 0:
		return fmt.Errorf("%w: key_space: %d is not positive", ErrInvalidConfiguration, c.KeySpace)
	case c.RateLimit < 0:
		return fmt.Errorf("%w: rate_limit: %g is negative", ErrInvalidConfiguration, c.RateLimit)
	case c.RateBurst < 0:
		return fmt.Errorf("%w: rate_burst: %d is negative", ErrInvalidConfiguration, c.RateBurst)
	case c.Logging.Count < minimumLogCount:
		return fmt.Errorf("%w: logging.count: %d is less than %d", ErrInvalidConfiguration, c.Logging.Count, minimumLogCount)
	}

	switch c.Mode {
	case ModeMixed:
		if c.InsertPercent < 0 || c.DeletePercent < 0 || c.InsertPercent+c.DeletePercent > 100 {
			return fmt.Errorf("%w: insert_percent %d and delete_percent %d must be non-negative and sum to at most 100",
				ErrInvalidConfiguration, c.InsertPercent, c.DeletePercent)
		}
	case ModePartitioned:
		if c.KeySpace < c.Workers {
			return fmt.Errorf("%w: key_space %d leaves some of %d workers without keys",
				ErrInvalidConfiguration, c.KeySpace, c.Workers)
		}
	case ModeOverlapping:
	default:
		return fmt.Errorf("%w: mode: %q is not supported", ErrInvalidConfiguration, c.Mode)
	}
	return nil
}
