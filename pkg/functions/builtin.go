package functions

import (
	"math/rand/v2"
	"time"

	loggerpkg "github.com/minhyannv/weather-chat-go/pkg/logger"
)

// Options configures the built-in function set.
type Options struct {
	// DataDir holds per-location <location>.csv reference tables.
	DataDir string
	Profile Profile
	Logger  loggerpkg.Logger
	// Now and Rand replace the wall clock and random source in tests.
	Now  func() time.Time
	Rand *rand.Rand
}

type handlers struct {
	dataDir string
	profile Profile
	logger  loggerpkg.Logger
	now     func() time.Time
	rand    *rand.Rand
}

// NewDefault builds a registry holding every built-in function in the order
// they are advertised to the model.
func NewDefault(opts Options) (*Registry, error) {
	h := &handlers{
		dataDir: opts.DataDir,
		profile: opts.Profile,
		logger:  opts.Logger,
		now:     opts.Now,
		rand:    opts.Rand,
	}
	if h.dataDir == "" {
		h.dataDir = "data"
	}
	if h.logger == nil {
		h.logger = loggerpkg.NopLogger{}
	}
	if h.now == nil {
		h.now = defaultNow
	}
	if h.rand == nil {
		h.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	reg := NewRegistry(h.logger)
	builtins := []struct {
		spec    Spec
		handler Handler
	}{
		{noArgsSpec(GetToday, "Gets the current date"), h.today},
		{temperatureSpec(), typed(h.temperature)},
		{currentWeatherSpec(), typed(h.currentWeather)},
		{noArgsSpec(GetUserLocation, "Gets the location city of the user"), h.userLocation},
		{noArgsSpec(WhereAmI, "Gets the location city of the user"), h.userLocation},
		{noArgsSpec(GetUserInformation, "Gets the user information object, with name, email, and location fields"), h.userInformation},
		{dressSpec(), typed(h.dressForTemperature)},
		{emailSpec(), typed(h.sendEmail)},
		{pythonSpec(), h.python},
	}
	for _, b := range builtins {
		if err := reg.Register(b.spec, b.handler); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
