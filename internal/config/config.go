// Package config loads rml2pdf settings from an optional YAML file and
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"pkt.systems/rml"
)

// Name is the base name of the config file searched by default.
const Name = "rml2pdf"

// Config is the effective rml2pdf configuration: built-in defaults, then the
// config file, then flags that were set on the command line.
type Config struct {
	PageSize     string   `mapstructure:"page_size" yaml:"page_size" validate:"required,pagesize"`
	CJK          bool     `mapstructure:"cjk" yaml:"cjk"`
	CJKLanguages []string `mapstructure:"cjk_languages" yaml:"cjk_languages,omitempty" validate:"dive,bcp47_language_tag"`
	FontDirs     []string `mapstructure:"font_dirs" yaml:"font_dirs,omitempty" validate:"dive,required"`
	SystemFonts  bool     `mapstructure:"system_fonts" yaml:"system_fonts"`
	// Fonts holds NAME=PATH TrueType registrations. A list keeps font names
	// case sensitive.
	Fonts    []string `mapstructure:"fonts" yaml:"fonts,omitempty" validate:"dive,fontspec"`
	Compress bool     `mapstructure:"compress" yaml:"compress"`
	Verbose  bool     `mapstructure:"verbose" yaml:"verbose"`
}

// FontSpec is one parsed entry of Config.Fonts.
type FontSpec struct {
	Name string
	Path string
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"page-size":    "page_size",
	"cjk":          "cjk",
	"cjk-lang":     "cjk_languages",
	"font-dir":     "font_dirs",
	"system-fonts": "system_fonts",
	"font":         "fonts",
	"compress":     "compress",
	"verbose":      "verbose",
}

// Default returns the settings used when neither a file nor flags say
// otherwise.
func Default() Config {
	return Config{
		PageSize:    "A4",
		CJK:         true,
		SystemFonts: true,
		Compress:    true,
	}
}

// LoadOptions controls Load.
type LoadOptions struct {
	// File is an explicit config file. It must exist.
	File string
	// SearchPaths are directories searched for rml2pdf.yaml when File is
	// empty. Nil means DefaultSearchPaths.
	SearchPaths []string
	// Flags, when set, override file values for every flag the user changed.
	Flags *pflag.FlagSet
}

// DefaultSearchPaths returns the working directory and
// ~/.config/rml2pdf.
func DefaultSearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", Name))
	}
	return paths
}

// Load reads the configuration and returns it with the path of the file
// used, which is empty when no file was found.
func Load(opts LoadOptions) (Config, string, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("page_size", def.PageSize)
	v.SetDefault("cjk", def.CJK)
	v.SetDefault("cjk_languages", []string{})
	v.SetDefault("font_dirs", []string{})
	v.SetDefault("system_fonts", def.SystemFonts)
	v.SetDefault("fonts", []string{})
	v.SetDefault("compress", def.Compress)
	v.SetDefault("verbose", def.Verbose)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		paths := opts.SearchPaths
		if paths == nil {
			paths = DefaultSearchPaths()
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return Config{}, "", fmt.Errorf("config: %w", err)
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, "", fmt.Errorf("config: bind --%s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, v.ConfigFileUsed(), nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("pagesize", func(fl validator.FieldLevel) bool {
		_, err := rml.ParsePageSize(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("fontspec", func(fl validator.FieldLevel) bool {
		_, err := ParseFontSpec(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks field values.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ParseFontSpec splits a NAME=PATH registration.
func ParseFontSpec(s string) (FontSpec, error) {
	name, path, ok := strings.Cut(s, "=")
	name, path = strings.TrimSpace(name), strings.TrimSpace(path)
	if !ok || name == "" || path == "" {
		return FontSpec{}, fmt.Errorf("config: font %q: want NAME=PATH", s)
	}
	return FontSpec{Name: name, Path: path}, nil
}

// FontSpecs parses Fonts.
func (c Config) FontSpecs() ([]FontSpec, error) {
	specs := make([]FontSpec, 0, len(c.Fonts))
	for _, s := range c.Fonts {
		spec, err := ParseFontSpec(s)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// YAML renders the configuration in the config file format.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
