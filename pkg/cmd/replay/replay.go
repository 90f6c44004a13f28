package replay

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ekjyotshinh/f1-replay-engine-go/log"
	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/config"
	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/ingest"
	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/replay"
	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/utils"
)

var (
	year     int
	race     string
	speed    float64
	drivers  []string
	interval time.Duration
)

// NewReplayCmd creates the command to replay a race headless on the console.
// Mainly used to verify ingestion and playback without a frontend attached.
func NewReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "replays a race on the console",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&year, "year", 2024, "season year")
	cmd.Flags().StringVar(&race, "race", "", "race name as used by the data service")
	cmd.Flags().Float64Var(&speed, "speed", 1, "playback speed factor")
	cmd.Flags().StringSliceVar(&drivers, "drivers", nil,
		"restrict the focus output to these driver codes")
	cmd.Flags().DurationVar(&interval, "interval", time.Second,
		"interval between console updates")
	cmd.Flags().IntVar(&config.ChunkCount, "chunks", ingest.DefaultChunkCount,
		"number of telemetry chunks to fetch")
	cmd.Flags().StringVar(&config.LogLevel, "log-level", "info",
		"controls the log level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&config.LogFormat, "log-format", "text",
		"controls the log output format")
	//nolint:errcheck // no useful way to handle the error here
	cmd.MarkFlagRequired("race")
	return cmd
}

//nolint:funlen // readable as one unit
func runReplay(mainCtx context.Context) error {
	setupLogger()

	ctx, stop := signal.NotifyContext(mainCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	waitTimeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		waitTimeout = 15 * time.Second
	}
	if err := utils.WaitForHTTPResponse(
		config.UpstreamURL+"/api/years", waitTimeout); err != nil {
		return err
	}

	upstreamTimeout, err := time.ParseDuration(config.UpstreamTimeout)
	if err != nil {
		upstreamTimeout = ingest.DefaultUpstreamTimeout
	}
	source := ingest.NewHTTPSource(config.UpstreamURL, upstreamTimeout)
	sess := replay.NewSession(year, race, source,
		replay.WithChunkCount(config.ChunkCount))
	sess.Start(ctx)
	defer sess.Close()

	log.Info("waiting for first chunk",
		log.Int("year", year), log.String("race", race))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-sess.Ready():
	}
	if err := sess.Err(); err != nil {
		return err
	}
	if track := sess.Track(); track != nil {
		log.Info("track loaded",
			log.String("name", track.Name),
			log.Int("laps", track.TotalLaps),
			log.Int("outline", len(track.Outline)))
	}

	if len(drivers) > 0 {
		sess.DeselectAll()
		for _, code := range drivers {
			sess.ToggleDriver(strings.ToUpper(code))
		}
	}

	sess.SetSpeed(speed)
	sess.SetPlaying(true)

	ticker := replay.NewIntervalTicker(interval)
	ticker.Run(ctx, func(elapsed time.Duration) {
		out := sess.Tick(elapsed)
		logTick(sess, out)
		if !sess.Playing() && !sess.Loading() {
			stop()
		}
	})
	if err := sess.Err(); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("replay ended with ingestion error", log.ErrorField(err))
		return err
	}
	log.Info("replay done", log.Float64("cursor", sess.Cursor()))
	return nil
}

func logTick(sess *replay.Session, out replay.TickOutput) {
	fields := []log.Field{
		log.Float64("cursor", sess.Cursor()),
		log.Int("lap", out.CurrentLap),
		log.Int("cars", len(out.All)),
	}
	for code, pos := range out.Selected {
		fields = append(fields, log.Any(code, pos))
	}
	log.Info("tick", fields...)
}

func setupLogger() {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(os.Stderr, parseLogLevel(config.LogLevel, log.InfoLevel))
	default:
		logger = log.DevLogger(os.Stderr, parseLogLevel(config.LogLevel, log.DebugLevel))
	}
	log.ResetDefault(logger)
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}
