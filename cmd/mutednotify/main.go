package main

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gordonklaus/portaudio"
	"github.com/univrsal/muted-notification/internal/capture"
	"github.com/univrsal/muted-notification/internal/cli"
	"github.com/univrsal/muted-notification/internal/config"
	"github.com/univrsal/muted-notification/internal/filter"
	"github.com/univrsal/muted-notification/internal/gate"
	"github.com/univrsal/muted-notification/internal/indicator"
	"github.com/univrsal/muted-notification/internal/logging"
	"github.com/univrsal/muted-notification/internal/playback"
	"github.com/univrsal/muted-notification/internal/ui"
)

var (
	version = "0.0.1"
)

// Stream format for the monitored microphone. The notification clip keeps
// its own format; only the capture side is fixed.
const (
	captureSampleRate = 48000
	captureChannels   = 2
)

// CLI defines the command-line interface
type CLI struct {
	Version     bool   `short:"v" help:"Show version information"`
	Config      string `short:"c" type:"path" help:"Path to TOML config file (optional, watched for changes)"`
	InputDevice string `short:"i" help:"Microphone to monitor (overrides config)"`
	File        string `short:"f" type:"path" help:"Notification clip to play (overrides config)"`
	Log         string `type:"path" help:"Write diagnostic logs to this file"`
	Debug       bool   `help:"Log at debug level"`
	ListDevices bool   `help:"List audio devices and exit"`
}

func main() {
	cliArgs := &CLI{}
	kong.Parse(cliArgs,
		kong.Name("mutednotify"),
		kong.Description("Notifies you when you speak into a muted microphone"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if cliArgs.ListDevices {
		if err := listDevices(); err != nil {
			cli.PrintError(fmt.Sprintf("Device enumeration failed: %v", err))
			os.Exit(1)
		}
		os.Exit(0)
	}

	log, closeLog, err := logging.Setup(cliArgs.Log, cliArgs.Debug)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
	defer closeLog()

	// Load settings
	settings := config.Default()
	if cliArgs.Config != "" {
		settings, err = config.Load(cliArgs.Config)
		if err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
	}
	settings = cliArgs.override(settings)

	// The player degrades to a no-op when audio output is unavailable;
	// the visual indicator keeps working either way.
	player := playback.NewPlayer(log)
	defer player.Close()

	overlay := indicator.NewOverlay()

	f := filter.New(captureSampleRate, captureChannels, player, overlay, log)
	f.Apply(settings)

	// The source starts muted: this tool exists to watch a muted mic.
	var muted atomic.Bool
	muted.Store(true)

	statusChan := make(chan tea.Msg, 1)

	stream, err := capture.Open(capture.Config{
		DeviceName:      settings.InputDevice,
		SampleRate:      captureSampleRate,
		Channels:        captureChannels,
		FramesPerBuffer: capture.DefaultFramesPerBuffer,
	}, func(buf capture.Buffer) {
		f.ProcessBuffer(buf.Samples, buf.Frames, muted.Load())

		// Non-blocking send; the UI polls at its own cadence and stale
		// snapshots are simply dropped.
		select {
		case statusChan <- ui.StatusMsg{
			Muted:       muted.Load(),
			GateOpen:    f.GateOpen(),
			Attenuation: f.Attenuation(),
			LevelDB:     gate.LinearToDB(float64(f.Level())),
		}:
		default:
		}
	})
	if err != nil {
		cli.PrintError(fmt.Sprintf("Failed to open capture device: %v", err))
		os.Exit(1)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		cli.PrintError(fmt.Sprintf("Failed to start capture: %v", err))
		os.Exit(1)
	}

	// Watch the config file for live edits
	stopWatch := make(chan struct{})
	defer close(stopWatch)
	if cliArgs.Config != "" {
		go func() {
			err := config.Watch(cliArgs.Config, log, func(s config.Settings) {
				f.UpdateSettings(cliArgs.override(s))
			}, stopWatch)
			if err != nil {
				log.Error("config watcher stopped", "error", err)
			}
		}()
	}

	toggle := func() bool {
		v := !muted.Load()
		muted.Store(v)
		return v
	}

	model := ui.NewModel(overlay, toggle, statusChan)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
		os.Exit(1)
	}
}

// override applies command-line flags on top of loaded settings.
func (c *CLI) override(s config.Settings) config.Settings {
	if c.InputDevice != "" {
		s.InputDevice = c.InputDevice
	}
	if c.File != "" {
		s.File = c.File
		s.AudioIndicator = true
	}
	return s
}

func listDevices() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	defer portaudio.Terminate()

	inputs, err := capture.Devices()
	if err != nil {
		return err
	}
	outputs, err := playback.Devices()
	if err != nil {
		return err
	}

	var in, out cli.DeviceTable
	for _, d := range inputs {
		in.AddRow(d.Name, d.Channels, d.SampleRate, d.Default)
	}
	for _, d := range outputs {
		out.AddRow(d.Name, d.Channels, d.SampleRate, d.Default)
	}

	fmt.Println(cli.KeyStyle.Render("Capture devices"))
	fmt.Print(in.String())
	fmt.Println()
	fmt.Println(cli.KeyStyle.Render("Playback devices"))
	fmt.Print(out.String())
	return nil
}
