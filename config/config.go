// Package config reads the portfolio declaration file and the environment
// of the divs tool.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/etnz/dividends"
	"github.com/etnz/dividends/eodhd"
	"github.com/etnz/dividends/yahoo"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// Environment variables.
const (
	EnvEODHDKey     = "EODHD_API_KEY"
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvGoogleKey    = "GOOGLE_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvLogLevel     = "DIVS_LOG_LEVEL"
)

// Providers of market data.
const (
	Yahoo = "yahoo"
	EODHD = "eodhd"
)

//go:embed default.toml
var defaultFile []byte

// Duration is a time.Duration written like "4h" or "30m".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Entry is a position as declared in the file.
type Entry struct {
	Ticker string  `toml:"ticker"`
	Name   string  `toml:"name"`
	Sector string  `toml:"sector"`
	Weight float64 `toml:"weight"`
}

// File is the portfolio declaration file.
type File struct {
	Benchmark    string   `toml:"benchmark"`
	LookbackDays int      `toml:"lookback_days"`
	Provider     string   `toml:"provider"`
	Model        string   `toml:"model"`
	CacheTTL     Duration `toml:"cache_ttl"`
	Positions    []Entry  `toml:"positions"`
}

// Decode reads a declaration file. Unknown keys are errors, to catch typos.
func Decode(r io.Reader) (*File, error) {
	var f File
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("invalid portfolio file: %w", err)
	}
	switch f.Provider {
	case "":
		f.Provider = Yahoo
	case Yahoo, EODHD:
	default:
		return nil, fmt.Errorf("invalid portfolio file: unknown provider %q", f.Provider)
	}
	if f.LookbackDays < 0 {
		return nil, fmt.Errorf("invalid portfolio file: negative lookback_days %d", f.LookbackDays)
	}
	return &f, nil
}

// Default returns the built-in portfolio.
func Default() *File {
	f, err := Decode(bytes.NewReader(defaultFile))
	if err != nil {
		panic(err)
	}
	return f
}

// Load reads the declaration file at path, or returns Default for an empty path.
func Load(path string) (*File, error) {
	if path == "" {
		return Default(), nil
	}
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	f, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Portfolio returns the declared portfolio.
func (f *File) Portfolio() (*dividends.Portfolio, error) {
	positions := make([]dividends.Position, 0, len(f.Positions))
	for _, e := range f.Positions {
		positions = append(positions, dividends.Position{Ticker: e.Ticker, Name: e.Name, Sector: e.Sector, Weight: e.Weight})
	}
	return dividends.NewPortfolio(positions)
}

// Options returns the analysis options. The eodhd provider does not know
// Yahoo's index tickers, so its default benchmark is its own Ibovespa.
func (f *File) Options(log *zerolog.Logger) dividends.Options {
	benchmark := f.Benchmark
	if benchmark == "" || (f.Provider == EODHD && benchmark == yahoo.Benchmark) {
		if f.Provider == EODHD {
			benchmark = eodhd.Benchmark
		} else {
			benchmark = yahoo.Benchmark
		}
	}
	return dividends.Options{Benchmark: benchmark, Lookback: f.LookbackDays, Log: log}
}

// TTL returns the lifetime of cached market data.
func (f *File) TTL() time.Duration {
	if f.CacheTTL.Duration <= 0 {
		return dividends.DefaultTTL
	}
	return f.CacheTTL.Duration
}

// Keys are the credentials of the external services.
type Keys struct {
	EODHD     string
	Gemini    string
	Anthropic string
}

// LoadEnv loads the .env files, if any, into the environment. Variables
// already set are not overridden.
func LoadEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot load %s: %w", name, err)
		}
	}
	return nil
}

// Resolve returns the first non blank value: flag, then environment, then file.
func Resolve(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// EnvKeys returns the keys found in the environment, overridden by the non
// empty keys of flags.
func EnvKeys(flags Keys) Keys {
	return Keys{
		EODHD:     Resolve(flags.EODHD, os.Getenv(EnvEODHDKey)),
		Gemini:    Resolve(flags.Gemini, os.Getenv(EnvGeminiKey), os.Getenv(EnvGoogleKey)),
		Anthropic: Resolve(flags.Anthropic, os.Getenv(EnvAnthropicKey)),
	}
}

// Fetcher returns the market data provider of f, memoized for f.TTL().
func (f *File) Fetcher(keys Keys, log zerolog.Logger) (*dividends.CachedFetcher, error) {
	var next dividends.Fetcher
	switch f.Provider {
	case EODHD:
		if keys.EODHD == "" {
			return nil, fmt.Errorf("the eodhd provider needs an API key: use -eodhd-api-key or %s", EnvEODHDKey)
		}
		next = eodhd.New(keys.EODHD, eodhd.WithLogger(log), eodhd.WithCacheTTL(f.TTL()))
	default:
		next = yahoo.New(yahoo.WithLogger(log), yahoo.WithCacheTTL(f.TTL()))
	}
	return dividends.NewCachedFetcher(next, f.TTL()), nil
}
