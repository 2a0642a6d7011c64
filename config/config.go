package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDataPath           = "data-path"
	ConfigLexiconPath        = "lexicon-path"
	ConfigLexiconEncoding    = "lexicon-encoding"
	ConfigLetterDistribution = "letter-distribution"
	ConfigDBPath             = "db-path"
	ConfigNatsURL            = "nats-url"
	ConfigPlayer             = "player"
	ConfigDebug              = "debug"
	ConfigWriteRetries       = "write-retries"
)

// Config wraps a viper instance. Values come, in increasing priority, from
// defaults, an optional config.yaml, TASHBETZ_* environment variables, and
// command-line flags.
type Config struct {
	*viper.Viper
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(ConfigDataPath, "./data")
	v.SetDefault(ConfigLexiconPath, "")
	v.SetDefault(ConfigLexiconEncoding, "utf-8")
	v.SetDefault(ConfigLetterDistribution, "hebrew")
	v.SetDefault(ConfigDBPath, "./data/tashbetz.db")
	v.SetDefault(ConfigNatsURL, "")
	v.SetDefault(ConfigPlayer, "")
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigWriteRetries, 3)

	v.SetEnvPrefix("tashbetz")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultConfig returns a config holding only the defaults and the
// environment. It does not read files or flags.
func DefaultConfig() *Config {
	return &Config{Viper: newViper()}
}

// Load reads the optional config file and parses args.
func (c *Config) Load(args []string) error {
	c.Viper = newViper()

	fs := pflag.NewFlagSet("tashbetz", pflag.ContinueOnError)
	fs.String(ConfigDataPath, c.GetString(ConfigDataPath), "directory holding letter distributions and lexica")
	fs.String(ConfigLexiconPath, c.GetString(ConfigLexiconPath), "path to a flat word list, one word per line")
	fs.String(ConfigLexiconEncoding, c.GetString(ConfigLexiconEncoding), "encoding of the word list: utf-8 or windows-1255")
	fs.String(ConfigLetterDistribution, c.GetString(ConfigLetterDistribution), "the letter distribution to draw from")
	fs.String(ConfigDBPath, c.GetString(ConfigDBPath), "sqlite database holding game documents")
	fs.String(ConfigNatsURL, c.GetString(ConfigNatsURL), "NATS server for the change feed; empty means in-process only")
	fs.String(ConfigPlayer, c.GetString(ConfigPlayer), "the local player's identifier")
	fs.Bool(ConfigDebug, c.GetBool(ConfigDebug), "debug logging")
	fs.Int(ConfigWriteRetries, c.GetInt(ConfigWriteRetries), "attempts for each remote write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	c.SetConfigName("config")
	c.SetConfigType("yaml")
	c.AddConfigPath(".")
	if err := c.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	} else {
		log.Debug().Str("file", c.ConfigFileUsed()).Msg("read config file")
	}
	return nil
}

// AdjustRelativePaths resolves relative data paths against basePath when
// they do not exist relative to the working directory.
func (c *Config) AdjustRelativePaths(basePath string) {
	for _, key := range []string{ConfigDataPath, ConfigLexiconPath} {
		p := c.GetString(key)
		if p == "" || filepath.IsAbs(p) {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			continue
		}
		adjusted := filepath.Join(basePath, p)
		log.Debug().Str("key", key).Str("path", adjusted).Msg("adjusting relative path")
		c.Set(key, adjusted)
	}
}
