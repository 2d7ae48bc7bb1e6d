// Package config binds the kcpu CLI's flags to a Config struct, the way
// oisee-z80-optimizer's cmd/z80opt/main.go binds search/stoke/export flags
// directly onto its subcommands' *pflag.FlagSet.
package config

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// Config holds the run subcommand's knobs: which images to load, the clock
// budget, and how noisy to be about it.
type Config struct {
	BiosPath  string
	ProgPath  string
	MaxClocks uint64
	LogLevel  string
}

// Bind registers this Config's fields onto fs, the way z80opt's enumerate
// and stoke subcommands each bind their own flag set.
func (c *Config) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&c.BiosPath, "bios", "", "path to a .kb BIOS image")
	fs.StringVar(&c.ProgPath, "prog", "", "path to a .kb program image")
	fs.Uint64Var(&c.MaxClocks, "max-clocks", 0, "stop after this many clocks (0 = unbounded)")
	fs.StringVar(&c.LogLevel, "log-level", "info", "logrus level: trace, debug, info, warn, error")
}

// Logger builds a *logrus.Logger at the configured level.
func (c *Config) Logger() (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetLevel(lvl)
	return log, nil
}
