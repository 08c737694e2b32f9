package buildenv

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Recognized invocation options.
const (
	OptionHost        = "host"
	OptionPort        = "port"
	OptionProduction  = "production"
	OptionDevelopment = "development"
	OptionOpen        = "open"
	OptionAPIEndpoint = "api-endpoint"
)

// EnvPrefix is prepended to the upper-cased option name when reading options
// from the environment, e.g. APPBUNDLE_API_ENDPOINT.
const EnvPrefix = "APPBUNDLE_"

var valueOptions = []string{OptionHost, OptionPort, OptionAPIEndpoint}

var allOptions = []string{
	OptionHost,
	OptionPort,
	OptionProduction,
	OptionDevelopment,
	OptionOpen,
	OptionAPIEndpoint,
}

// Params maps option names to their raw values. Boolean options given without
// a value are stored as "true".
type Params map[string]string

// ParseArgs parses command-line style options of the form --name=value,
// --name value (value options only), --name and --no-name. Anything else is
// skipped, parsing stops at "--".
func ParseArgs(args []string) Params {
	params := Params{}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}

		if !strings.HasPrefix(arg, "--") || len(arg) == 2 {
			continue
		}

		name, value, hasValue := strings.Cut(arg[2:], "=")
		if name == "" {
			continue
		}

		if hasValue {
			params[name] = value
			continue
		}

		if slices.Contains(valueOptions, name) {
			// a value option without a value is left unset
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				params[name] = args[i+1]
				i++
			}
			continue
		}

		if negated, ok := strings.CutPrefix(name, "no-"); ok {
			params[negated] = "false"
			continue
		}

		params[name] = "true"
	}

	return params
}

// FromEnv reads recognized options from the environment, after loading the
// .env file in projectRoot if there is one. Values already set in the process
// environment take precedence over the .env file.
func FromEnv(projectRoot string) Params {
	path := filepath.Join(projectRoot, ".env")

	fileEnv, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Debug().Err(err).Str("file", path).Msg("Ignoring unreadable .env file")
		}
		fileEnv = map[string]string{}
	}

	params := Params{}
	for _, name := range allOptions {
		key := EnvKey(name)
		if v, ok := os.LookupEnv(key); ok {
			params[name] = v
			continue
		}
		if v, ok := fileEnv[key]; ok {
			params[name] = v
		}
	}

	return params
}

// EnvKey returns the environment variable name for an option.
func EnvKey(name string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// Unrecognized lists the parameter names which are not build options, sorted.
func (p Params) Unrecognized() []string {
	names := []string{}
	for name := range p {
		if !slices.Contains(allOptions, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Merge returns a new Params with the values of each later set overriding the
// earlier ones.
func Merge(sets ...Params) Params {
	merged := Params{}
	for _, set := range sets {
		maps.Copy(merged, set)
	}
	return merged
}
