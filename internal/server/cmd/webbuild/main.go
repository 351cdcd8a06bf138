// Command webbuild bundles the calculator UI from web/src into web/client.js,
// which the server embeds. Run it through `go generate ./internal/server`.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

func main() {
	minify := flag.Bool("minify", false, "minify the bundle and drop the inline source map")
	flag.Parse()

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	logger = kitlog.With(logger, "cmd", "webbuild")

	wd, err := os.Getwd()
	if err != nil {
		level.Error(logger).Log("msg", "getwd", "err", err)
		os.Exit(1)
	}

	entry := filepath.Join(wd, "web", "src", "main.ts")
	out := filepath.Join(wd, "web", "client.js")

	sourcemap := api.SourceMapInline
	if *minify {
		sourcemap = api.SourceMapNone
	}

	result := api.Build(api.BuildOptions{
		EntryPoints:       []string{entry},
		Outfile:           out,
		AbsWorkingDir:     wd,
		Bundle:            true,
		Format:            api.FormatIIFE,
		Target:            api.ES2018,
		Platform:          api.PlatformBrowser,
		LogLevel:          api.LogLevelInfo,
		Sourcemap:         sourcemap,
		MinifyWhitespace:  *minify,
		MinifyIdentifiers: *minify,
		MinifySyntax:      *minify,
		Write:             true,
		Loader: map[string]api.Loader{
			".ts": api.LoaderTS,
		},
	})
	for _, message := range result.Warnings {
		level.Warn(logger).Log("msg", message.Text)
	}
	if len(result.Errors) > 0 {
		for _, message := range result.Errors {
			level.Error(logger).Log("msg", "esbuild error", "text", message.Text)
		}
		level.Error(logger).Log("msg", "esbuild failed", "errors", len(result.Errors))
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "bundle written", "out", out)
}
