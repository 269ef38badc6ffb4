package rainbowsmoke

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment keys read by OptionsFromEnv.
const (
	EnvWidth         = "SMOKE_WIDTH"
	EnvHeight        = "SMOKE_HEIGHT"
	EnvResolution    = "SMOKE_RESOLUTION" // "r,g,b" or a single value for all channels
	EnvRadius        = "SMOKE_RADIUS"
	EnvConnectivity  = "SMOKE_CONNECTIVITY" // "4" or "8"
	EnvExpose        = "SMOKE_EXPOSE"       // neighbors, random
	EnvOrder         = "SMOKE_ORDER"        // fifo, lifo, random
	EnvPriority      = "SMOKE_PRIORITY"     // flat, distance
	EnvColorTies     = "SMOKE_RANDOM_COLOR_TIES"
	EnvRandomSeed    = "SMOKE_RANDOM_SEED"
	EnvSeedColor     = "SMOKE_SEED_COLOR" // "random" or "r,g,b"
	EnvRegionCells   = "SMOKE_REGION_CELLS"
	EnvRegionWeight  = "SMOKE_REGION_WEIGHT"
	EnvRegionJitter  = "SMOKE_REGION_JITTER"
	EnvProgressEvery = "SMOKE_PROGRESS_EVERY"
)

// LoadOptions reads env files (".env" when none is given) over DefaultOptions.
// Width and height given without a resolution get a lattice sized by OptionsFromSize.
func LoadOptions(files ...string) (Options, error) {
	env, err := godotenv.Read(files...)
	if err != nil {
		return Options{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return OptionsFromEnv(DefaultOptions(), env)
}

// OptionsFromEnv overrides base with the SMOKE_* values present in env and validates the result.
func OptionsFromEnv(base Options, env map[string]string) (Options, error) {
	opt := base
	p := envParser{env: env}

	p.int(EnvWidth, &opt.Width)
	p.int(EnvHeight, &opt.Height)
	if _, ok := env[EnvResolution]; !ok && (env[EnvWidth] != "" || env[EnvHeight] != "") {
		sized := OptionsFromSize(image.Pt(opt.Width, opt.Height))
		opt.Resolution = sized.Resolution
	}
	if v, ok := p.get(EnvResolution); ok {
		vals, err := parseTriple(v, 1<<16)
		if err != nil {
			p.fail(EnvResolution, err)
		} else {
			opt.Resolution = Resolution{R: vals[0], G: vals[1], B: vals[2]}
		}
	}
	p.int(EnvRadius, &opt.Radius)
	if v, ok := p.get(EnvConnectivity); ok {
		switch v {
		case "4":
			opt.Connectivity = Connectivity4
		case "8":
			opt.Connectivity = Connectivity8
		default:
			p.fail(EnvConnectivity, fmt.Errorf("want 4 or 8, got %q", v))
		}
	}
	if v, ok := p.get(EnvExpose); ok {
		switch strings.ToLower(v) {
		case "neighbors":
			opt.Expose = ExposeNeighbors
		case "random":
			opt.Expose = ExposeRandomUnset
		default:
			p.fail(EnvExpose, fmt.Errorf("want neighbors or random, got %q", v))
		}
	}
	if v, ok := p.get(EnvOrder); ok {
		o, err := ParseOrder(v)
		if err != nil {
			p.fail(EnvOrder, err)
		}
		opt.Order = o
	}
	if v, ok := p.get(EnvPriority); ok {
		switch strings.ToLower(v) {
		case "flat":
			opt.Priority = PriorityFlat
		case "distance":
			opt.Priority = PriorityDistance
		default:
			p.fail(EnvPriority, fmt.Errorf("want flat or distance, got %q", v))
		}
	}
	if v, ok := p.get(EnvColorTies); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.fail(EnvColorTies, err)
		}
		opt.RandomColorTies = b
	}
	if v, ok := p.get(EnvRandomSeed); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			p.fail(EnvRandomSeed, err)
		}
		opt.RandomSeed = n
	}
	if v, ok := p.get(EnvSeedColor); ok {
		if strings.EqualFold(v, "random") {
			opt.SeedColor = SeedColorRandom
		} else if vals, err := parseTriple(v, math.MaxUint16); err != nil {
			p.fail(EnvSeedColor, err)
		} else {
			opt.SeedColor = SeedColorFixed
			opt.FixedColor = Color{R: uint16(vals[0]), G: uint16(vals[1]), B: uint16(vals[2])}
		}
	}
	p.int(EnvRegionCells, &opt.RegionCells)
	p.int(EnvRegionWeight, &opt.RegionWeight)
	p.int(EnvRegionJitter, &opt.RegionJitter)
	p.int(EnvProgressEvery, &opt.ProgressEvery)

	if p.err != nil {
		return Options{}, p.err
	}
	if err := opt.Validate(); err != nil {
		return Options{}, err
	}
	return opt, nil
}

type envParser struct {
	env map[string]string
	err error
}

func (p *envParser) get(key string) (string, bool) {
	v, ok := p.env[key]
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *envParser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s: %v", ErrConfiguration, key, err)
	}
}

func (p *envParser) int(key string, dst *int) {
	v, ok := p.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, err)
		return
	}
	*dst = n
}

// parseTriple reads "a,b,c", or a single value repeated three times. Values must lie in [0, limit].
func parseTriple(s string, limit int) ([3]int, error) {
	var out [3]int
	parts := strings.Split(s, ",")
	if len(parts) == 1 {
		parts = []string{parts[0], parts[0], parts[0]}
	}
	if len(parts) != 3 {
		return out, fmt.Errorf("want 1 or 3 comma separated values, got %q", s)
	}
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return out, err
		}
		if n < 0 || n > limit {
			return out, fmt.Errorf("value %d outside [0, %d]", n, limit)
		}
		out[i] = n
	}
	return out, nil
}
