package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid setting")

// Save backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Settings is everything cmd/burrow can be told, from a file or flags.
type Settings struct {
	Layout          string // precon name
	ChannelCapacity int

	LogLevel  string // debug, info, warn, error
	LogFormat string // json or text
	LogFile   string

	Metrics bool
	Tracing bool

	SaveBackend string
	SavePath    string
	SaveEvery   int    // turns between saves; 0 saves only on exit
	Session     string // session to resume or write; empty means new
	Load        bool   // resume Session from the store

	Color string // auto, ascii, ansi, ansi256, truecolor
}

// Defaults returns the settings used when nothing else is given.
func Defaults() Settings {
	return Settings{
		Layout:          "empty_10x10",
		ChannelCapacity: 1,
		LogLevel:        "info",
		LogFormat:       "json",
		LogFile:         "burrow.log",
		SaveBackend:     BackendNone,
		SavePath:        "burrow.db",
		Color:           "auto",
	}
}

// FromConfig overlays the values present in c onto base.
//
//	map:       {layout: empty_10x10}
//	runtime:   {channel_capacity: 1}
//	log:       {level: info, format: json, file: burrow.log}
//	telemetry: {metrics: false, tracing: false}
//	savegame:  {backend: sqlite, path: burrow.db, every: 0, session: ""}
//	ui:        {color: auto}
func FromConfig(c Config, base Settings) Settings {
	s := base
	s.Layout = c.String("map.layout", s.Layout)
	s.ChannelCapacity = c.Int("runtime.channel_capacity", s.ChannelCapacity)

	s.LogLevel = c.String("log.level", s.LogLevel)
	s.LogFormat = c.String("log.format", s.LogFormat)
	s.LogFile = c.String("log.file", s.LogFile)

	s.Metrics = c.Bool("telemetry.metrics", s.Metrics)
	s.Tracing = c.Bool("telemetry.tracing", s.Tracing)

	sg := c.Sub("savegame")
	s.SaveBackend = sg.String("backend", s.SaveBackend)
	s.SavePath = sg.String("path", s.SavePath)
	s.SaveEvery = sg.Int("every", s.SaveEvery)
	s.Session = sg.String("session", s.Session)

	s.Color = c.String("ui.color", s.Color)
	return s
}

// Validate checks every field.
func (s Settings) Validate() error {
	var errs []error
	if s.Layout == "" {
		errs = append(errs, fmt.Errorf("%w: layout is empty", ErrInvalid))
	}
	if s.ChannelCapacity < 0 {
		errs = append(errs, fmt.Errorf("%w: channel capacity %d", ErrInvalid, s.ChannelCapacity))
	}
	if _, err := parseLevel(s.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains([]string{"json", "text"}, s.LogFormat) {
		errs = append(errs, fmt.Errorf("%w: log format %q", ErrInvalid, s.LogFormat))
	}
	if !slices.Contains([]string{BackendNone, BackendMemory, BackendSQLite}, s.SaveBackend) {
		errs = append(errs, fmt.Errorf("%w: save backend %q", ErrInvalid, s.SaveBackend))
	}
	if s.SaveBackend == BackendSQLite && s.SavePath == "" {
		errs = append(errs, fmt.Errorf("%w: sqlite backend needs a path", ErrInvalid))
	}
	if s.SaveEvery < 0 {
		errs = append(errs, fmt.Errorf("%w: save interval %d", ErrInvalid, s.SaveEvery))
	}
	if s.Load && (s.Session == "" || s.SaveBackend == BackendNone) {
		errs = append(errs, fmt.Errorf("%w: --load needs a session and a save backend", ErrInvalid))
	}
	if !slices.Contains([]string{"auto", "ascii", "ansi", "ansi256", "truecolor"}, s.Color) {
		errs = append(errs, fmt.Errorf("%w: color %q", ErrInvalid, s.Color))
	}
	return errors.Join(errs...)
}

// SlogLevel returns LogLevel as a slog.Level, or slog.LevelInfo if it is
// not valid.
func (s Settings) SlogLevel() slog.Level {
	l, err := parseLevel(s.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(name string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log level %q", ErrInvalid, name)
	}
	return l, nil
}

// RegisterFlags adds the command-line flags to fs, with Defaults as their
// defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("config", "", "config file (.yaml, .yml or .json)")
	fs.String("layout", d.Layout, "map layout name")
	fs.Int("channel-capacity", d.ChannelCapacity, "buffer size of the game channels")
	fs.String("log-level", d.LogLevel, "log level: debug, info, warn or error")
	fs.String("log-format", d.LogFormat, "log format: json or text")
	fs.String("log-file", d.LogFile, "log file path")
	fs.Bool("metrics", d.Metrics, "record OpenTelemetry metrics")
	fs.Bool("tracing", d.Tracing, "record OpenTelemetry spans")
	fs.String("save", d.SaveBackend, "save backend: none, memory or sqlite")
	fs.String("save-path", d.SavePath, "sqlite save file")
	fs.Int("save-every", d.SaveEvery, "turns between saves, 0 for exit only")
	fs.String("session", d.Session, "session ID to write or resume")
	fs.Bool("load", d.Load, "resume --session from the save store")
	fs.String("color", d.Color, "color profile: auto, ascii, ansi, ansi256 or truecolor")
}

// Load builds Settings from parsed flags: defaults, then the --config file
// if given, then every flag set explicitly. The result is validated.
func Load(fs *pflag.FlagSet) (Settings, error) {
	s := Defaults()

	path, err := fs.GetString("config")
	if err != nil {
		return Settings{}, err
	}
	if path != "" {
		c, err := FromFile(path)
		if err != nil {
			return Settings{}, err
		}
		s = FromConfig(c, s)
	}

	var flagErr error
	fs.Visit(func(f *pflag.Flag) {
		if err := applyFlag(fs, f.Name, &s); err != nil {
			flagErr = errors.Join(flagErr, err)
		}
	})
	if flagErr != nil {
		return Settings{}, flagErr
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func applyFlag(fs *pflag.FlagSet, name string, s *Settings) error {
	var err error
	switch name {
	case "layout":
		s.Layout, err = fs.GetString(name)
	case "channel-capacity":
		s.ChannelCapacity, err = fs.GetInt(name)
	case "log-level":
		s.LogLevel, err = fs.GetString(name)
	case "log-format":
		s.LogFormat, err = fs.GetString(name)
	case "log-file":
		s.LogFile, err = fs.GetString(name)
	case "metrics":
		s.Metrics, err = fs.GetBool(name)
	case "tracing":
		s.Tracing, err = fs.GetBool(name)
	case "save":
		s.SaveBackend, err = fs.GetString(name)
	case "save-path":
		s.SavePath, err = fs.GetString(name)
	case "save-every":
		s.SaveEvery, err = fs.GetInt(name)
	case "session":
		s.Session, err = fs.GetString(name)
	case "load":
		s.Load, err = fs.GetBool(name)
	case "color":
		s.Color, err = fs.GetString(name)
	}
	return err
}
