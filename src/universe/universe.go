package universe

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

//Cell is the state of one grid position
type Cell uint8

const (
	Dead Cell = 0
	Live Cell = 1
)

var (
	ErrInvalidSize    = errors.New("grid dimensions must be positive")
	ErrParse          = errors.New("invalid pattern")
	ErrInvalidOptions = errors.New("invalid options")
)

//Options represents the simulation's configurable options
type Options struct {
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Interval time.Duration `json:"interval"`
	MaxSteps int           `json:"max_steps"`
}

//default options
const (
	DefSimulationInterval = time.Millisecond * 100
	DefMaxSteps           = 0
	DefWidth              = 30
	DefHeight             = 20
)

var DefaultOptions = Options{
	Width:    DefWidth,
	Height:   DefHeight,
	Interval: DefSimulationInterval,
	MaxSteps: DefMaxSteps,
}

//Validate checks the options are usable for a simulation run
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return errors.Wrapf(ErrInvalidOptions, "dimension %v x %v", o.Width, o.Height)
	}
	if o.Interval < 0 {
		return errors.Wrapf(ErrInvalidOptions, "negative interval %v", o.Interval)
	}
	if o.MaxSteps < 0 {
		return errors.Wrapf(ErrInvalidOptions, "negative max steps %v", o.MaxSteps)
	}
	return nil
}

//LoadOptions reads the JSON options file on top of DefaultOptions
func LoadOptions(filename string) (Options, error) {
	o := DefaultOptions

	data, err := os.ReadFile(filename)
	if err != nil {
		return o, errors.Wrapf(err, "[LoadOptions] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &o); err != nil {
		return o, errors.Wrapf(err, "[LoadOptions] failed to unmarshal data from file: %+v", filename)
	}

	return o, nil
}
