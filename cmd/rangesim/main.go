// Command rangesim runs an anchor and a tag node against the simulated
// channel and shows the tag's indicator live.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"uwbdistance-go/internal/config"
	"uwbdistance-go/x/logx"
)

var (
	flagDistance  uint64
	flagTarget    uint64
	flagTolerance uint64
	flagBattery   uint16
	flagLoss      float64
	flagHeadless  time.Duration
	flagJSON      bool
	flagLogFile   string
	flagLogLevel  string
	flagSweepTo   uint64
	flagSweepTime time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rangesim",
		Short: "Simulate a UWB anchor and tag pair",
		Long: `rangesim runs the anchor and tag firmware against a simulated radio
channel. The tag's LED strip is drawn in the terminal; move the tag with the
arrow keys and watch the indicator follow.

Use --headless to run for a fixed time and only log.`,
		RunE: run,
	}

	d := config.Default()
	f := rootCmd.Flags()
	f.Uint64Var(&flagDistance, "distance", 150, "initial anchor to tag distance in cm")
	f.Uint64Var(&flagTarget, "target", d.TargetCm, "target distance in cm")
	f.Uint64Var(&flagTolerance, "tolerance", d.ToleranceCm, "tolerance in cm")
	f.Uint16Var(&flagBattery, "battery", 3900, "initial battery voltage in mV")
	f.Float64Var(&flagLoss, "loss", 0, "frame loss probability (0..1)")
	f.DurationVar(&flagHeadless, "headless", 0, "run without the live view for this long")
	f.Uint64Var(&flagSweepTo, "sweep-to", 0, "walk the tag to this distance in cm (0 disables)")
	f.DurationVar(&flagSweepTime, "sweep-time", 10*time.Second, "duration of the sweep")
	f.BoolVar(&flagJSON, "json", false, "log JSON records")
	f.StringVar(&flagLogFile, "log-file", "", "log destination (default stderr when headless, discarded otherwise)")
	f.StringVar(&flagLogLevel, "log-level", d.LogLevel, "debug, info, warn or error")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	cfg.Device = "sim"
	cfg.TargetCm, cfg.ToleranceCm = flagTarget, flagTolerance
	cfg.LogLevel = flagLogLevel
	if err := cfg.Validate(); err != nil {
		return err
	}
	if flagLoss < 0 || flagLoss > 1 {
		return fmt.Errorf("loss %v out of range", flagLoss)
	}

	zl, err := newLogger(flagJSON, flagLogFile, flagHeadless > 0)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()
	logx.SetSink(zapSink{l: zl})
	lvl, _ := config.ParseLevel(cfg.LogLevel)
	logx.SetLevel(lvl)

	w := newWorld(cfg, flagDistance*10, flagBattery)
	w.air.SetLoss(flagLoss)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	done := w.start(ctx)
	if flagSweepTo > 0 {
		go w.sweep(ctx, flagSweepTo*10, flagSweepTime)
	}

	if flagHeadless > 0 {
		select {
		case <-time.After(flagHeadless):
		case <-done:
		}
		cancel()
		w.wait()
		zl.Info("simulation finished",
			zap.Uint64("average_cm", w.tag.handle.AverageDistance()),
			zap.String("range", w.tag.led.Range().String()))
		return nil
	}

	p := tea.NewProgram(newModel(w), tea.WithAltScreen())
	_, err = p.Run()
	cancel()
	w.wait()
	return err
}

// newLogger builds the zap logger behind the firmware's logx records.
func newLogger(json bool, file string, headless bool) (*zap.Logger, error) {
	var zc zap.Config
	if json {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	// logx filters levels itself.
	zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	switch {
	case file != "":
		zc.OutputPaths = []string{file}
	case headless:
		zc.OutputPaths = []string{"stderr"}
	default:
		return zap.NewNop(), nil
	}
	return zc.Build()
}
