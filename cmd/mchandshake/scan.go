package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gstoney/mchandshake"
	"github.com/gstoney/mchandshake/internal/metrics"
	"github.com/gstoney/mchandshake/packet"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	outcomeFrameTooBig = "frame_too_big"
	outcomeFrameError  = "frame_error"
)

type scanSummary struct {
	Frames  int
	Decoded int
	Failed  int
}

func scanCmd(g *globalFlags) *cobra.Command {
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "scan [capture]",
		Short: "Decode every handshake in a capture stream",
		Long: `Read a stream of concatenated handshake frames from a capture file,
or stdin when no file is given, and log one line per frame.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if metricsFile != "" {
				cfg.MetricsFile = metricsFile
			}
			logger := newLogger(cmd, cfg)

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			rec := metrics.NewRecorder()
			sum, scanErr := runScan(in, logger, rec, mchandshake.ScannerConfig{MaxPacketLen: cfg.MaxPacketLen})

			fmt.Fprintf(cmd.OutOrStdout(), "frames=%d decoded=%d failed=%d\n", sum.Frames, sum.Decoded, sum.Failed)

			if cfg.MetricsFile != "" {
				if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
			}
			return scanErr
		},
	}

	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")

	return cmd
}

// runScan decodes frames from r until the stream ends. A frame that fails
// to decode is logged and counted; an error that misaligns the stream stops
// the scan.
func runScan(r io.Reader, logger zerolog.Logger, rec *metrics.Recorder, cfg mchandshake.ScannerConfig) (scanSummary, error) {
	var sum scanSummary
	s := mchandshake.NewFrameScanner(r, cfg)

	for {
		f, err := s.Next()
		if err == io.EOF {
			return sum, nil
		}
		if errors.Is(err, mchandshake.ErrFrameTooBig) {
			sum.Frames++
			sum.Failed++
			rec.Observe(outcomeFrameTooBig, 0)
			logger.Warn().Int64("offset", f.Offset).Int32("length", f.Length).Msg("frame skipped")
			continue
		}
		if err != nil {
			rec.Observe(outcomeFrameError, 0)
			return sum, fmt.Errorf("read frame at offset %d: %w", f.Offset, err)
		}

		sum.Frames++
		h, err := packet.ParseHandshakeBytes(f.Raw)
		kind := packet.Classify(err)
		rec.Observe(kind.String(), len(f.Raw))

		if err != nil {
			sum.Failed++
			logger.Warn().
				Str("frame", f.ID.String()).
				Int64("offset", f.Offset).
				Str("outcome", kind.String()).
				Err(err).
				Msg("handshake rejected")
			continue
		}

		sum.Decoded++
		logger.Info().
			Str("frame", f.ID.String()).
			Int64("offset", f.Offset).
			Int32("protocol_version", h.ProtocolVersion).
			Str("address", h.Address).
			Uint16("port", h.Port).
			Int32("next_state", h.NextState).
			Str("intent", h.Intent().String()).
			Msg("handshake")
	}
}
