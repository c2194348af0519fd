// Package conf parses the command line.
package conf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Mode is the chosen subcommand.
type Mode int

const (
	// ModeCreate listens for inbound peers and starts in WaitingForPeers.
	ModeCreate Mode = iota
	// ModeJoin dials a peer and starts in Joining.
	ModeJoin
)

// Options holds everything gathered from the command line.
type Options struct {
	Mode        Mode
	Address     string // join target multiaddr
	Port        int    // create listen port, 0 = random
	Verbose     bool
	DownloadDir string // override for received files, empty = default
}

// ErrHelp is returned when the user asked for usage output; the caller
// prints Usage and exits cleanly.
var ErrHelp = errors.New("help requested")

// ParseCLI parses args (without the program name).
//
//	gomeet create [--port N]
//	gomeet join --address /ip4/1.2.3.4/tcp/4242/p2p/<peer-id>
func ParseCLI(args []string) (Options, error) {
	if len(args) == 0 {
		return Options{}, errors.New("missing command: expected 'create' or 'join'")
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help", "-h", "--help":
		return Options{}, ErrHelp
	case "create":
		return parseCreate(rest)
	case "join":
		return parseJoin(rest)
	default:
		return Options{}, fmt.Errorf("unknown command %q: expected 'create' or 'join'", cmd)
	}
}

func parseCreate(args []string) (Options, error) {
	fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
	port := fs.Int("port", 0, "TCP listen port (0 picks a random port)")
	opts, err := parseCommon(fs, args)
	if err != nil {
		return Options{}, err
	}
	if *port < 0 || *port > 65535 {
		return Options{}, fmt.Errorf("invalid --port %d", *port)
	}
	opts.Mode = ModeCreate
	opts.Port = *port
	return opts, nil
}

func parseJoin(args []string) (Options, error) {
	fs := pflag.NewFlagSet("join", pflag.ContinueOnError)
	address := fs.String("address", "", "peer multiaddr to dial")
	opts, err := parseCommon(fs, args)
	if err != nil {
		return Options{}, err
	}
	if strings.TrimSpace(*address) == "" {
		return Options{}, errors.New("join requires --address")
	}
	opts.Mode = ModeJoin
	opts.Address = strings.TrimSpace(*address)
	return opts, nil
}

func parseCommon(fs *pflag.FlagSet, args []string) (Options, error) {
	var opts Options
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	fs.StringVar(&opts.DownloadDir, "downloads", "", "directory for received files")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Options{}, ErrHelp
		}
		return Options{}, err
	}
	if fs.NArg() > 0 {
		return Options{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return opts, nil
}

// Usage is the top-level help text.
func Usage() string {
	return strings.TrimLeft(`
Usage:
  gomeet create [--port N] [--verbose] [--downloads DIR]
  gomeet join --address <multiaddr> [--verbose] [--downloads DIR]

Commands:
  create   Create a new room and wait for others to join.
  join     Join an existing room using a peer's address.

In-call keys:
  q  end the call      i  compose a chat line
  m  mute microphone   v  mute camera
  f  send a file
`, "\n")
}
