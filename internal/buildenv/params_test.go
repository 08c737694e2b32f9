package buildenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected Params
	}{
		{
			name:     "empty",
			args:     nil,
			expected: Params{},
		},
		{
			name: "equals form",
			args: []string{"--host=0.0.0.0", "--port=3000", "--api-endpoint=http://localhost:9000/v1"},
			expected: Params{
				OptionHost:        "0.0.0.0",
				OptionPort:        "3000",
				OptionAPIEndpoint: "http://localhost:9000/v1",
			},
		},
		{
			name:     "bare booleans",
			args:     []string{"--production", "--open"},
			expected: Params{OptionProduction: "true", OptionOpen: "true"},
		},
		{
			name:     "negated boolean",
			args:     []string{"--no-open"},
			expected: Params{OptionOpen: "false"},
		},
		{
			name:     "separate value for value options",
			args:     []string{"--port", "3000", "--open"},
			expected: Params{OptionPort: "3000", OptionOpen: "true"},
		},
		{
			name:     "value option followed by a flag",
			args:     []string{"--port", "--open"},
			expected: Params{OptionOpen: "true"},
		},
		{
			name:     "bare value options left unset",
			args:     []string{"--host", "--api-endpoint"},
			expected: Params{},
		},
		{
			name:     "unknown options kept but harmless",
			args:     []string{"--foo=bar"},
			expected: Params{"foo": "bar"},
		},
		{
			name:     "positional and short flags skipped",
			args:     []string{"serve", "-v", "--", "--open"},
			expected: Params{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ParseArgs(tt.args))
		})
	}
}

func TestFromEnv(t *testing.T) {
	root := t.TempDir()
	err := os.WriteFile(filepath.Join(root, ".env"), []byte("APPBUNDLE_PORT=4000\nAPPBUNDLE_HOST=file-host\n"), 0o600)
	require.NoError(t, err)

	t.Setenv("APPBUNDLE_HOST", "env-host")
	t.Setenv("APPBUNDLE_API_ENDPOINT", "http://localhost:9000")

	params := FromEnv(root)

	require.Equal(t, Params{
		OptionHost:        "env-host",
		OptionPort:        "4000",
		OptionAPIEndpoint: "http://localhost:9000",
	}, params)
}

func TestFromEnv_noDotEnv(t *testing.T) {
	params := FromEnv(t.TempDir())
	require.NotContains(t, params, OptionPort)
}

func TestFromEnv_malformedDotEnv(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("APPBUNDLE_PORT='4000\n"), 0o600))

	t.Setenv("APPBUNDLE_HOST", "env-host")

	params := FromEnv(root)
	require.Equal(t, Params{OptionHost: "env-host"}, params)
}

func TestMerge(t *testing.T) {
	merged := Merge(Params{OptionHost: "a", OptionPort: "1"}, Params{OptionHost: "b"})
	require.Equal(t, Params{OptionHost: "b", OptionPort: "1"}, merged)
}

func TestEnvKey(t *testing.T) {
	require.Equal(t, "APPBUNDLE_API_ENDPOINT", EnvKey(OptionAPIEndpoint))
}

func TestParams_Unrecognized(t *testing.T) {
	params := ParseArgs([]string{"--open", "--foo=bar", "--verbose"})
	require.Equal(t, []string{"foo", "verbose"}, params.Unrecognized())
}
