package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sebastienrousseau/langweave/detect"
	"github.com/sebastienrousseau/langweave/metrics"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries what the persistent flags resolved for the subcommands.
type app struct {
	configFile string
	logLevel   string
	config     *Config
}

func (a *app) load(cmd *cobra.Command) (err error) {
	a.config, err = loadConfig(a.configFile)
	if err != nil {
		return
	}
	level := a.config.LogLevel
	if cmd.Flags().Changed("log-level") {
		level = a.logLevel
	}
	err = reloadLogConfig(level)
	if err != nil {
		err = fmt.Errorf("error parsing log level '%s': %w", level, err)
	}
	return
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "langweave",
		Short: "Hybrid natural language identification",
		Long: `Identify the natural language of short texts with ordered lexical rules,
a per-word statistical fallback and optional remote detectors.

Examples:
  langweave detect "Le chat noir"
  langweave languages
  cat messages.txt | langweave stream --config config.yml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(
		newDetectCmd(a),
		newLanguagesCmd(),
		newStreamCmd(a),
	)
	return rootCmd
}

func newDetectCmd(a *app) *cobra.Command {
	var async bool
	cmd := &cobra.Command{
		Use:   "detect <text>...",
		Short: "Print the language code of the given text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			service, err := detect.NewService(a.config.DetectService)
			if err != nil {
				return
			}

			text := strings.Join(args, " ")
			var lang string
			if async {
				r := <-service.DetectAsync(cmd.Context(), text)
				lang, err = r.Language, r.Err
			} else {
				lang, err = service.Detect(text)
			}
			if err != nil {
				return
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), lang)
			return
		},
	}
	cmd.Flags().BoolVar(&async, "async", false, "detect on a worker goroutine")
	return cmd
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages [code]...",
		Short: "List the supported languages, or check the given codes",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, code := range detect.SupportedLanguages() {
					if _, err = fmt.Fprintln(out, code); err != nil {
						return
					}
				}
				return
			}

			unsupported := 0
			for _, code := range args {
				state := "supported"
				if !detect.IsLanguageSupported(code) {
					state = "unsupported"
					unsupported++
				}
				if _, err = fmt.Fprintf(out, "%s\t%s\n", code, state); err != nil {
					return
				}
			}
			if unsupported > 0 {
				err = fmt.Errorf("%d of %d languages unsupported", unsupported, len(args))
			}
			return
		},
	}
}

func newStreamCmd(a *app) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Detect the language of every line read from stdin",
		Long: `Detect the language of every line read from stdin and print
"<code>\t<line>" in input order; "und" marks undetected lines.
SIGHUP reloads the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if cmd.Flags().Changed("workers") {
				a.config.Stream.WorkerPoolSize = workers
			}

			service, err := detect.NewService(a.config.DetectService)
			if err != nil {
				return
			}
			streamer, err := newStreamer(a.config.Stream, service)
			if err != nil {
				return
			}

			metrics.InitMetricServer(a.config.Metric)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go handleSignals(ctx, a, streamer)

			return streamer.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "worker pool size, overrides stream.worker_pool_size")
	return cmd
}

func handleSignals(ctx context.Context, a *app, streamer *Streamer) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			logrus.Infof("received %s, attempting to reload config", sig.String())

			appConfig, err := loadConfig(a.configFile)
			if err != nil {
				logrus.Errorf("error reloading config: %v", err)
				continue
			}

			err = reloadLogConfig(appConfig.LogLevel)
			if err != nil {
				logrus.Errorf("error parsing new log level '%s': %v", appConfig.LogLevel, err)
				continue
			}

			service, err := detect.NewService(appConfig.DetectService)
			if err != nil {
				logrus.Error(err)
				continue
			}

			streamer.Reload(appConfig.Stream, service)
			logrus.Info("config reloaded")
		}
	}
}
