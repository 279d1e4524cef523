// Command rgb-controller drives an RGB LED and buzzer from a 4x4 keypad, a
// temperature sensor or a tilt switch, and optionally reports its state over
// MQTT and HTTP.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/sweeney/rgb-controller/internal/config"
	"github.com/sweeney/rgb-controller/internal/gpio"
	"github.com/sweeney/rgb-controller/internal/sensor"
	"github.com/sweeney/rgb-controller/internal/ui"
)

func main() {
	if err := newRootCmd(ui.NewConsole(os.Stdout)).Execute(); err != nil {
		ui.NewConsole(os.Stderr).Fail(err)
		os.Exit(1)
	}
}

// flags are the persistent command line overrides.
type flags struct {
	configPath string
	noColor    bool
	broker     string
	httpAddr   string
	heartbeat  time.Duration
	poll       time.Duration
	seed       uint64
}

func newRootCmd(console *ui.Console) *cobra.Command {
	var f flags
	cfg := config.Default()

	root := &cobra.Command{
		Use:   "rgb-controller",
		Short: "Non-blocking RGB light and buzzer controller",
		Long: `rgb-controller runs one of three variants on the same polling loop:

  keypad  mode menu driven by a 4x4 keypad (or typed keys on stdin)
  thermo  temperature mood light with an over-temperature alarm
  tilt    tilt switch alarm`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ui.SetNoColor(f.noColor)
			loaded, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, loaded, f)
			if err := loaded.Validate(); err != nil {
				return err
			}
			*cfg = *loaded
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "TOML config file")
	pf.BoolVar(&f.noColor, "no-color", false, "disable colored output")
	pf.StringVar(&f.broker, "broker", "", "MQTT broker address (empty disables publishing)")
	pf.StringVar(&f.httpAddr, "http", "", "HTTP status address (empty disables)")
	pf.DurationVar(&f.heartbeat, "heartbeat", 0, "heartbeat interval (0 to disable)")
	pf.DurationVar(&f.poll, "poll", 10*time.Millisecond, "polling interval")
	pf.Uint64Var(&f.seed, "seed", 0, "random colour seed (0 picks one)")

	root.AddCommand(
		newVariantCmd(variantKeypad, "Run the keypad mode menu", cfg, console),
		newVariantCmd(variantThermo, "Run the temperature mood light", cfg, console),
		newVariantCmd(variantTilt, "Run the tilt switch alarm", cfg, console),
		newProbeCmd(cfg, console),
	)
	return root
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f flags) {
	changed := cmd.Flags().Changed
	if changed("broker") {
		cfg.Broker = f.broker
	}
	if changed("http") {
		cfg.HTTP = f.httpAddr
	}
	if changed("heartbeat") {
		cfg.Heartbeat.Duration = f.heartbeat
	}
	if changed("poll") {
		cfg.Poll.Duration = f.poll
	}
	if changed("seed") {
		cfg.Seed = f.seed
	}
}

func newVariantCmd(v variant, short string, cfg *config.Config, console *ui.Console) *cobra.Command {
	return &cobra.Command{
		Use:   string(v),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v, cfg, console)
		},
	}
}

func newProbeCmd(cfg *config.Config, console *ui.Console) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Read the sensor and tilt switch once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return probe(cfg, console)
		},
	}
}

// probe prints one sensor reading and the raw tilt line.
func probe(cfg *config.Config, console *ui.Console) error {
	r, err := sensor.NewIIOReader(cfg.Thermo.Device)
	if err != nil {
		console.Warn("sensor: %v", err)
	} else {
		defer r.Close()
		reading, err := r.Read()
		if err != nil {
			console.Warn("sensor: %v", err)
		} else {
			console.Reading(reading, cfg.Thermo.Thresholds().Classify(reading.TempC))
		}
	}

	tilt, err := gpio.NewRealReader(cfg.Pins.Tilt)
	if err != nil {
		return fmt.Errorf("init tilt: %w", err)
	}
	defer tilt.Close()
	on, err := tilt.Read()
	if err != nil {
		return fmt.Errorf("read tilt: %w", err)
	}
	console.Info("Tilt: %s", stateString(on))
	return nil
}

func stateString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
