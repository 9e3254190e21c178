package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gstoney/mchandshake/packet"
	"github.com/spf13/cobra"
)

// longest VarInt length prefix
const maxPrefixLen = 5

var (
	errInputTooLarge = errors.New("input exceeds max_packet_len")
	errHexAndFile    = errors.New("hex argument and --file are mutually exclusive")
)

type handshakeJSON struct {
	ProtocolVersion int32  `json:"protocol_version"`
	Address         string `json:"address"`
	Port            uint16 `json:"port"`
	NextState       int32  `json:"next_state"`
	Intent          string `json:"intent"`
}

func decodeCmd(g *globalFlags) *cobra.Command {
	var file string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "decode [hex]",
		Short: "Decode one handshake packet",
		Long: `Decode one framed handshake packet.

The packet is taken from the hex argument, from --file as raw bytes,
or from stdin as raw bytes when neither is given.`,
		Args: cobra.MatchAll(cobra.MaximumNArgs(1), func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && cmd.Flags().Changed("file") {
				return errHexAndFile
			}
			return nil
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)
			limit := int64(cfg.MaxPacketLen) + maxPrefixLen

			var input []byte
			switch {
			case len(args) == 1:
				input, err = parseHex(args[0])
			case file != "" && file != "-":
				var f *os.File
				f, err = os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				input, err = readLimited(f, limit)
			default:
				input, err = readLimited(cmd.InOrStdin(), limit)
			}
			if err != nil {
				return err
			}
			if int64(len(input)) > limit {
				return errInputTooLarge
			}

			h, err := packet.ParseHandshakeBytes(input)
			if err != nil {
				kind := packet.Classify(err)
				logger.Debug().Str("outcome", kind.String()).Bool("incomplete", kind.Incomplete()).Int("bytes", len(input)).Msg("handshake rejected")
				return fmt.Errorf("decode handshake (%s): %w", kind, err)
			}

			return printHandshake(cmd.OutOrStdout(), h, asJSON)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read raw packet bytes from file (- for stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the handshake as JSON")

	return cmd
}

func parseHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse hex: %w", err)
	}
	return b, nil
}

// readLimited reads at most limit+1 bytes so oversized input is detected
// without buffering all of it.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errInputTooLarge
	}
	return b, nil
}

func printHandshake(w io.Writer, h packet.Handshake, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		return enc.Encode(handshakeJSON{
			ProtocolVersion: h.ProtocolVersion,
			Address:         h.Address,
			Port:            h.Port,
			NextState:       h.NextState,
			Intent:          h.Intent().String(),
		})
	}

	_, err := fmt.Fprintf(w, "protocol_version: %d\naddress:          %s\nport:             %d\nnext_state:       %d (%s)\n",
		h.ProtocolVersion, h.Address, h.Port, h.NextState, h.Intent())
	return err
}
