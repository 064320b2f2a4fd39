package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gogpu/imgray/internal/image"
)

// envPrefix prefixes environment overrides, e.g. IMGRAY_WORKERS.
const envPrefix = "IMGRAY"

// Config is the resolved command configuration.
type Config struct {
	Src     string `mapstructure:"src" validate:"required"`
	Dst     string `mapstructure:"dst" validate:"required,nefield=Src,imgformat"`
	GPU     bool   `mapstructure:"gpu"`
	Workers int    `mapstructure:"workers" validate:"gte=0,lte=1024"`
	Device  string `mapstructure:"device" validate:"oneof=hal cpu"`
	Verbose bool   `mapstructure:"verbose"`
}

// registerFlags declares the command flags on fs.
func registerFlags(fs *pflag.FlagSet) {
	fs.BoolP("gpu", "g", false, "convert on the compute device instead of the host worker pool")
	fs.IntP("workers", "w", 0, "host workers, also the tile grid side (0 = available CPUs)")
	fs.String("device", "hal", "compute device for --gpu: hal or cpu")
	fs.BoolP("verbose", "v", false, "log debug output to stderr")
	fs.String("config", "", "read flags from a config file (yaml, json or toml)")
}

// newViper returns a viper instance bound to fs and the IMGRAY_ environment.
func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	return v, nil
}

// loadConfig resolves flags, environment and the optional config file into
// a validated Config. Positional arguments are the source and destination.
func loadConfig(v *viper.Viper, args []string) (Config, error) {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if len(args) > 0 {
		v.Set("src", args[0])
	}
	if len(args) > 1 {
		v.Set("dst", args[1])
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate is shared; validator caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("imgformat", func(fl validator.FieldLevel) bool {
		_, err := image.FormatFromPath(fl.Field().String())
		return err == nil
	})
	return v
}

// validateConfig reports the first invalid field in flag terms.
func validateConfig(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("invalid config: %w", err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("missing %s", strings.ToLower(fe.Field()))
	case "nefield":
		return errors.New("destination must differ from source")
	case "imgformat":
		return fmt.Errorf("unsupported output format %q", fe.Value())
	case "oneof":
		return fmt.Errorf("invalid --%s %q (want one of: %s)", strings.ToLower(fe.Field()), fe.Value(), fe.Param())
	default:
		return fmt.Errorf("invalid --%s %v", strings.ToLower(fe.Field()), fe.Value())
	}
}
