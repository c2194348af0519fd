// gomeet is a peer-to-peer terminal meet tool: ASCII video, raw audio,
// chat and file transfer between terminals, no server in the middle.
//
//	gomeet create
//	gomeet join --address /ip4/1.2.3.4/tcp/4242/p2p/<peer-id>
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pterm/pterm"

	"github.com/2jungg/gomeet/conf"
	"github.com/2jungg/gomeet/device"
	"github.com/2jungg/gomeet/logs"
	"github.com/2jungg/gomeet/session"
	"github.com/2jungg/gomeet/transport/tcpmesh"
	"github.com/2jungg/gomeet/ui"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		if errors.Is(err, conf.ErrHelp) {
			pterm.Print(conf.Usage())
			return
		}
		pterm.Error.Printfln("gomeet: %v", err)
		os.Exit(1)
	}
}

func run() error {
	opts, err := conf.ParseCLI(os.Args[1:])
	if err != nil {
		return err
	}

	logger, logPath, closeLog, logErr := logs.Init(opts.Verbose)
	if closeLog != nil {
		defer closeLog()
	}
	if logErr != nil {
		pterm.Warning.Printfln("log file disabled (%v)", logErr)
	} else {
		pterm.Info.Printfln("gomeet %s | logs: %s", version, logPath)
	}

	peerID := uuid.NewString()
	logger.Info().Str("peer_id", peerID).Msg("starting")

	// Construction order matters: teardown happens in reverse via the
	// defers, so the terminal is restored before devices and transport go
	// away.
	mesh, err := tcpmesh.New(logger.With().Str("comp", "mesh").Logger())
	if err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	defer mesh.Close()

	initial := session.WaitingForPeers
	switch opts.Mode {
	case conf.ModeCreate:
		if err := mesh.Listen(opts.Port); err != nil {
			return err
		}
	case conf.ModeJoin:
		pterm.Info.Printfln("dialing %s", opts.Address)
		if err := mesh.Dial(opts.Address); err != nil {
			return err
		}
		initial = session.Joining
	}

	audio, err := device.StartAudio(logger.With().Str("comp", "audio").Logger())
	if err != nil {
		return err
	}
	defer audio.Close()

	camCtx, camCancel := context.WithCancel(context.Background())
	defer camCancel()
	camera := device.StartCamera(camCtx, logger.With().Str("comp", "camera").Logger())

	terminal, err := ui.Open()
	if err != nil {
		return err
	}
	defer terminal.Close()

	loop := session.New(session.Config{
		PeerID:    peerID,
		Initial:   initial,
		Transport: mesh,
		Frames:    camera,
		AudioIn:   audio.Captured(),
		AudioOut:  audio.Playback(),
		Renderer:  terminal,
		Keys:      ui.ReadKeys(os.Stdin),
		Picker:    session.DialogPicker{},
		Downloads: opts.DownloadDir,
		Log:       logger.With().Str("comp", "session").Logger(),
	})
	err = loop.Run()
	logger.Info().Err(err).Msg("session ended")
	return err
}
