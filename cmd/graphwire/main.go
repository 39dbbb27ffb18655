// Command graphwire converts JSON or CBOR to and from the graphwire format
// and prints stream diagnostics.
//
//	graphwire encode [--from json|cbor] < in > out.gw
//	graphwire decode [--to json|cbor] < out.gw
//	graphwire diag < out.gw
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/rawbytedev/graphwire"
	"github.com/rawbytedev/graphwire/internal/config"
	"github.com/rawbytedev/graphwire/pkg/frame"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// settings is the resolved configuration of one invocation.
type settings struct {
	from, to string
	cfg      *config.Config
	opts     graphwire.Options
	frame    frame.Options
	logger   *slog.Logger
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("missing command")
	}
	command, args := args[0], args[1:]
	switch command {
	case "version", "--version":
		fmt.Fprintf(stdout, "graphwire %s\n", version)
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	case "encode", "decode", "diag":
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", command)
	}

	s, err := parseFlags(command, args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	input, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if len(input) == 0 {
		return errors.New("empty input on stdin")
	}
	s.logger.Debug("read input", "command", command, "bytes", len(input))

	switch command {
	case "encode":
		return encode(s, input, stdout)
	case "decode":
		return decode(s, input, stdout)
	default:
		return diag(s, input, stdout)
	}
}

func parseFlags(command string, args []string, stderr io.Writer) (*settings, error) {
	s := &settings{}
	var configPath, compression string
	var simple, byIndex, framed, debug bool

	flagSet := pflag.NewFlagSet(command, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&s.from, "from", "json", "input format for encode: json or cbor")
	flagSet.StringVar(&s.to, "to", "json", "output format for decode: json or cbor")
	flagSet.BoolVar(&simple, "simple", false, "disable reference tracking")
	flagSet.BoolVar(&byIndex, "by-index", false, "write class fields by index")
	flagSet.BoolVar(&framed, "frame", false, "wrap payloads in transport frames")
	flagSet.StringVar(&compression, "compression", "none", "frame compression: none, zstd or lz4")
	flagSet.StringVar(&configPath, "config", "", "YAML configuration file")
	flagSet.BoolVar(&debug, "debug", false, "log at debug level")
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if flagSet.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", flagSet.Arg(0))
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	s.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	s.cfg = config.Default()
	if configPath != "" {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		s.cfg = cfg
		s.logger.Debug("loaded config", "path", configPath)
	}
	// explicit flags override the file
	if flagSet.Changed("simple") {
		s.cfg.Simple = simple
	}
	if flagSet.Changed("by-index") && byIndex {
		s.cfg.FieldMode = graphwire.FieldsByIndex.String()
	}
	if flagSet.Changed("frame") {
		s.cfg.Frame.Enabled = framed
	}
	if flagSet.Changed("compression") {
		s.cfg.Frame.Compression = compression
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	var err error
	if s.opts, err = s.cfg.Options(); err != nil {
		return nil, err
	}
	if s.frame, err = s.cfg.FrameOptions(); err != nil {
		return nil, err
	}
	return s, nil
}

func encode(s *settings, input []byte, stdout io.Writer) error {
	value, err := parseInput(s.from, input)
	if err != nil {
		return err
	}
	out, err := graphwire.Marshal(value, s.opts)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if s.cfg.Frame.Enabled {
		if out, err = frame.EncodeData(out, s.frame); err != nil {
			return fmt.Errorf("frame: %w", err)
		}
	}
	s.logger.Debug("encoded", "format", s.from, "bytes", len(out), "simple", s.opts.Simple, "fields", s.opts.FieldMode)
	_, err = stdout.Write(out)
	return err
}

func decode(s *settings, input []byte, stdout io.Writer) error {
	payload, err := unframe(s, input)
	if err != nil {
		return err
	}
	var value any
	if err := graphwire.Unmarshal(payload, &value, s.opts); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	out, err := formatOutput(s.to, value)
	if err != nil {
		return err
	}
	s.logger.Debug("decoded", "format", s.to, "bytes", len(out))
	_, err = stdout.Write(out)
	return err
}

func diag(s *settings, input []byte, stdout io.Writer) error {
	payload, err := unframe(s, input)
	if err != nil {
		return err
	}
	notation, err := graphwire.Diagnose(payload)
	if err != nil {
		return fmt.Errorf("diagnose: %w", err)
	}
	_, err = fmt.Fprintln(stdout, notation)
	return err
}

func unframe(s *settings, input []byte) ([]byte, error) {
	if !s.cfg.Frame.Enabled {
		return input, nil
	}
	payload, err := frame.DecodeData(input, s.frame)
	if err != nil {
		return nil, fmt.Errorf("frame: %w", err)
	}
	s.logger.Debug("unframed", "bytes", len(payload))
	return payload, nil
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `graphwire converts between JSON/CBOR and the graphwire format.

Usage:
  graphwire encode [flags] < input
  graphwire decode [flags] < input.gw
  graphwire diag [flags] < input.gw
  graphwire version

Flags:
  --from json|cbor           input format for encode (default json)
  --to json|cbor             output format for decode (default json)
  --simple                   disable reference tracking
  --by-index                 write class fields by index
  --frame                    wrap payloads in transport frames
  --compression none|zstd|lz4
  --config FILE              YAML configuration file
  --debug                    log at debug level
`)
}
