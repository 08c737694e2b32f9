package bundle

import (
	"sync"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
)

// progressPlugin reports build start and completion so long builds do not
// look stuck.
func progressPlugin() api.Plugin {
	var (
		mu      sync.Mutex
		started time.Time
		builds  int
	)

	return api.Plugin{
		Name: PluginProgress,
		Setup: func(build api.PluginBuild) {
			build.OnStart(func() (api.OnStartResult, error) {
				mu.Lock()
				defer mu.Unlock()

				started = time.Now()
				builds++
				log.Info().Int("build", builds).Msg("Build started")
				return api.OnStartResult{}, nil
			})

			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				mu.Lock()
				defer mu.Unlock()

				for _, msg := range result.Warnings {
					log.Warn().Str("warning", formatMessage(msg)).Msg("Build warning")
				}
				for _, msg := range result.Errors {
					log.Error().Str("error", formatMessage(msg)).Msg("Build error")
				}

				log.Info().
					Int("build", builds).
					Dur("elapsed", time.Since(started)).
					Int("errors", len(result.Errors)).
					Int("warnings", len(result.Warnings)).
					Msg("Build finished")
				return api.OnEndResult{}, nil
			})
		},
	}
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return msg.Location.File + ": " + msg.Text
}
