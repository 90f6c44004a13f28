package server

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ekjyotshinh/f1-replay-engine-go/log"
	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/config"
	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/server"
	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/utils"
)

func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "starts the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer()
		},
	}
	cmd.Flags().StringVarP(&config.ServerAddr,
		"addr",
		"a",
		"localhost:3000",
		"HTTP server listen address")
	cmd.Flags().StringVar(&config.AllowedOrigin,
		"allowed-origin",
		"https://ekjyotshinh.github.io",
		"origin allowed by CORS")
	cmd.Flags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&config.LogFormat,
		"log-format",
		"json",
		"controls the log output format")
	return cmd
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

func setupLogger() {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	log.ResetDefault(logger)
}

func startServer() error {
	setupLogger()

	log.Debug("Config:",
		log.String("addr", config.ServerAddr),
		log.String("upstream", config.UpstreamURL),
		log.String("origin", config.AllowedOrigin),
	)

	waitForRequiredServices()

	upstreamTimeout, err := time.ParseDuration(config.UpstreamTimeout)
	if err != nil {
		upstreamTimeout = 120 * time.Second
	}

	r := server.NewRouter(server.Config{
		UpstreamURL:     config.UpstreamURL,
		UpstreamTimeout: upstreamTimeout,
		AllowedOrigin:   config.AllowedOrigin,
	})

	log.Info("Starting HTTP server", log.String("addr", config.ServerAddr))
	if err := r.Run(config.ServerAddr); err != nil {
		log.Error("server could not be started", log.ErrorField(err))
		return err
	}
	log.Info("Server terminated")
	return nil
}

func waitForRequiredServices() {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	if upstreamAddr := utils.ExtractFromHTTPURL(config.UpstreamURL); upstreamAddr != "" {
		if err = utils.WaitForTCP(upstreamAddr, timeout); err != nil {
			log.Fatal("required services not ready", log.ErrorField(err))
		}
	}
	log.Debug("Required services are available")
}
