package config

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const (
	AppName               = "todolist"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "todo.db"
	DefaultDirName        = "tasks"
	DefaultLogName        = "todolist.log"
	DefaultKey            = "todos"

	// EnvConfigPath overrides where the config file lives.
	EnvConfigPath = "TODOLIST_CONFIG"
)

type Keymap struct {
	Quit    string `toml:"quit"`
	Add     string `toml:"add"`
	Up      string `toml:"up"`
	Down    string `toml:"down"`
	Toggle  string `toml:"toggle"`
	Delete  string `toml:"delete"`
	Edit    string `toml:"edit"`
	Confirm string `toml:"confirm"`
	Cancel  string `toml:"cancel"`
	Filter  string `toml:"filter"`
	Help    string `toml:"help"`
}

type Storage struct {
	Backend string `toml:"backend"`
	DBPath  string `toml:"db_path"`
	Dir     string `toml:"dir"`
	Key     string `toml:"key"`
}

type Log struct {
	Path   string `toml:"path"`
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	InputMode string  `toml:"input_mode"`
	Storage   Storage `toml:"storage"`
	Log       Log     `toml:"log"`
	Keys      Keymap  `toml:"keys"`
}

// ResolveConfigPath picks the config file: $TODOLIST_CONFIG, then the
// user config dir, then the working directory.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName, DefaultConfigFileName)
	}
	return DefaultConfigFileName
}

// LoadOrCreate reads the config at path, writing the defaults there first
// if the file does not exist. Relative paths inside the file are resolved
// against the file's directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		cfg.resolvePaths(filepath.Dir(path))
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case "sqlite", "file", "memory":
	default:
		return errors.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	switch strings.ToLower(c.InputMode) {
	case "auto", "mouse", "touch":
	default:
		return errors.Errorf("input_mode: want auto, mouse or touch, got %q", c.InputMode)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json", "logfmt":
	default:
		return errors.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.InputMode == "" {
		c.InputMode = d.InputMode
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = d.Storage.DBPath
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = d.Storage.Dir
	}
	if c.Storage.Key == "" {
		c.Storage.Key = d.Storage.Key
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	fillKeys(&c.Keys, d.Keys)
}

func fillKeys(k *Keymap, d Keymap) {
	pairs := []struct {
		dst *string
		def string
	}{
		{&k.Quit, d.Quit}, {&k.Add, d.Add}, {&k.Up, d.Up}, {&k.Down, d.Down},
		{&k.Toggle, d.Toggle}, {&k.Delete, d.Delete}, {&k.Edit, d.Edit},
		{&k.Confirm, d.Confirm}, {&k.Cancel, d.Cancel}, {&k.Filter, d.Filter},
		{&k.Help, d.Help},
	}
	for _, p := range pairs {
		if strings.TrimSpace(*p.dst) == "" {
			*p.dst = p.def
		}
	}
}

// The log path "-" means discard; it is left alone.
func (c *Config) resolvePaths(base string) {
	c.Storage.DBPath = resolve(base, c.Storage.DBPath)
	c.Storage.Dir = resolve(base, c.Storage.Dir)
	if c.Log.Path != "-" {
		c.Log.Path = resolve(base, c.Log.Path)
	}
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "file:") {
		return p
	}
	return filepath.Join(base, p)
}

// Bindings splits a comma-separated keymap entry. "space" stands for the
// space bar, which cannot be written bare in the list.
func Bindings(entry string) []string {
	var out []string
	for _, k := range strings.Split(entry, ",") {
		k = strings.TrimSpace(k)
		switch k {
		case "":
			continue
		case "space":
			k = " "
		}
		out = append(out, k)
	}
	return out
}

func Default() Config {
	return Config{
		InputMode: "auto",
		Storage: Storage{
			Backend: "sqlite",
			DBPath:  DefaultDBName,
			Dir:     DefaultDirName,
			Key:     DefaultKey,
		},
		Log: Log{
			Path:   DefaultLogName,
			Level:  "info",
			Format: "text",
		},
		Keys: Keymap{
			Quit:    "q,ctrl+c",
			Add:     "a",
			Up:      "k,up",
			Down:    "j,down",
			Toggle:  "space,x",
			Delete:  "d",
			Edit:    "e,enter",
			Confirm: "enter",
			Cancel:  "esc",
			Filter:  "f",
			Help:    "?",
		},
	}
}
