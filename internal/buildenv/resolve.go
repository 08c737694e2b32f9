package buildenv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultHost = "localhost"
	DefaultPort = "8080"
)

// Mode selects production or development oriented bundling.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// Metadata is forwarded to downstream tooling for templating and build time
// substitution. ProjectRoot is required, the other values act as defaults
// which invocation options override.
type Metadata struct {
	ProjectRoot string `json:"projectRoot"`
	BuildID     string `json:"buildId"`
	Host        string `json:"host,omitempty"`
	Port        string `json:"port,omitempty"`
	APIEndpoint string `json:"apiEndpoint,omitempty"`
}

// NewMetadata returns metadata for the project root with a fresh build id.
func NewMetadata(projectRoot string) Metadata {
	return Metadata{
		ProjectRoot: projectRoot,
		BuildID:     uuid.NewString(),
	}
}

// Flags is the resolved build environment. An empty Host or Port means the
// option was not supplied.
type Flags struct {
	Host        string `json:"host,omitempty"`
	Port        string `json:"port,omitempty"`
	Production  bool   `json:"production"`
	Development bool   `json:"development"`
	OpenBrowser bool   `json:"openBrowser"`
	APIEndpoint string `json:"apiEndpoint,omitempty"`
}

// Resolve derives the build environment flags from the invocation parameters
// and metadata. Unrecognized parameters are ignored.
func Resolve(params Params, meta Metadata) Flags {
	flags := Flags{
		Host:        meta.Host,
		Port:        meta.Port,
		APIEndpoint: meta.APIEndpoint,
	}

	if v, ok := params[OptionHost]; ok && strings.TrimSpace(v) != "" {
		flags.Host = strings.TrimSpace(v)
	}
	if v, ok := params[OptionPort]; ok && strings.TrimSpace(v) != "" {
		flags.Port = strings.TrimSpace(v)
	}
	if v, ok := params[OptionAPIEndpoint]; ok && strings.TrimSpace(v) != "" {
		flags.APIEndpoint = strings.TrimSpace(v)
	}

	flags.Production = boolParam(params, OptionProduction)
	flags.Development = boolParam(params, OptionDevelopment)
	flags.OpenBrowser = boolParam(params, OptionOpen)

	return flags
}

// Mode returns the bundling mode. Production takes precedence when both
// production and development are set; development is the default.
func (f Flags) Mode() Mode {
	if f.Production {
		return ModeProduction
	}
	return ModeDevelopment
}

// HostOrDefault returns the bind host, defaulting to localhost.
func (f Flags) HostOrDefault() string {
	if f.Host == "" {
		return DefaultHost
	}
	return f.Host
}

// PortOrDefault returns the bind port, defaulting to 8080.
func (f Flags) PortOrDefault() string {
	if f.Port == "" {
		return DefaultPort
	}
	return f.Port
}

// Addr returns the dev server listen address.
func (f Flags) Addr() string {
	return f.HostOrDefault() + ":" + f.PortOrDefault()
}

// BrowserURL is the address opened in the browser when OpenBrowser is set.
func (f Flags) BrowserURL() string {
	return fmt.Sprintf("http://%s:%s", f.HostOrDefault(), f.PortOrDefault())
}

// With returns a copy of the metadata carrying the resolved flag values.
func (m Metadata) With(flags Flags) Metadata {
	m.Host = flags.Host
	m.Port = flags.Port
	m.APIEndpoint = flags.APIEndpoint
	return m
}

// boolParam treats a bare or empty value as true and an unparsable value as
// unset.
func boolParam(params Params, name string) bool {
	v, ok := params[name]
	if !ok {
		return false
	}
	if strings.TrimSpace(v) == "" {
		return true
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false
	}
	return b
}
