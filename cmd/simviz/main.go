// Command simviz runs the real-time simulation demos: a waypoint-patrolling
// vehicle, a flow-driven tank, and a web dashboard over the tank.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/simlab/simviz/internal/config"
	"github.com/simlab/simviz/internal/dash"
	"github.com/simlab/simviz/internal/models"
	"github.com/simlab/simviz/internal/sim"
	"github.com/simlab/simviz/internal/simstate"
	"github.com/simlab/simviz/internal/tui"
)

var (
	configFile string
	factor     float64
	frameRate  int
	inflow     float64
	outflow    float64
	port       int
	openUI     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "simviz",
		Short: "real-time simulation visualizer",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().Float64Var(&factor, "factor", config.DefaultFactor, "simulation speed factor")

	vehicleCmd := &cobra.Command{
		Use:   "vehicle",
		Short: "waypoint patrol demo in the terminal",
		RunE:  runVehicle,
	}
	vehicleCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFrameRate, "frame rate")

	tankCmd := &cobra.Command{
		Use:   "tank",
		Short: "tank volume demo in the terminal",
		RunE:  runTank,
	}
	tankCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFrameRate, "frame rate")
	tankCmd.Flags().Float64Var(&inflow, "inflow", config.DefaultInflow, "inflow rate (L/s)")
	tankCmd.Flags().Float64Var(&outflow, "outflow", config.DefaultOutflow, "outflow rate (L/s)")

	dashCmd := &cobra.Command{
		Use:   "dash",
		Short: "tank demo served as a web dashboard",
		RunE:  runDash,
	}
	dashCmd.Flags().IntVar(&port, "port", config.DefaultDashPort, "http port")
	dashCmd.Flags().BoolVar(&openUI, "open", false, "open the dashboard in a browser")
	dashCmd.Flags().Float64Var(&inflow, "inflow", config.DefaultInflow, "inflow rate (L/s)")
	dashCmd.Flags().Float64Var(&outflow, "outflow", config.DefaultOutflow, "outflow rate (L/s)")

	rootCmd.AddCommand(vehicleCmd, tankCmd, dashCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("factor") {
		cfg.Factor = config.ClampFactor(factor)
	}
	if cmd.Flags().Changed("fps") {
		cfg.FrameRate = frameRate
	}
	if cmd.Flags().Changed("inflow") {
		cfg.Tank.Inflow = config.ClampFlow(inflow)
	}
	if cmd.Flags().Changed("outflow") {
		cfg.Tank.Outflow = config.ClampFlow(outflow)
	}
	if cmd.Flags().Changed("port") {
		cfg.Dash.Port = port
	}
	if cmd.Flags().Changed("open") {
		cfg.Dash.OpenBrowser = openUI
	}

	return cfg, cfg.Validate()
}

func runVehicle(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	initial := simstate.Telemetry{
		Position:    cfg.Vehicle.Waypoints[0],
		Target:      cfg.Vehicle.Waypoints[0],
		TargetIndex: 0,
		Message:     "Initializing...",
	}
	return runTerminal(tui.ModeVehicle, cfg, initial, models.VehicleFactory(cfg.Vehicle))
}

func runTank(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	initial := simstate.Telemetry{TargetIndex: -1, Message: "Initializing..."}
	return runTerminal(tui.ModeTank, cfg, initial, models.TankFactory(cfg.Tank))
}

// runTerminal wires the simulation side to the TUI consumer: supervisor in
// one goroutine, bubbletea in the foreground, orderly join on exit.
func runTerminal(mode tui.Mode, cfg *config.Config, initial simstate.Telemetry, factory sim.Factory) error {
	// The alt screen owns the terminal; keep log output away from it.
	logrus.SetOutput(io.Discard)

	state := simstate.New(initial, simstate.Controls{
		Factor:  config.ClampFactor(cfg.Factor),
		Inflow:  cfg.Tank.Inflow,
		Outflow: cfg.Tank.Outflow,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	supDone := make(chan error, 1)
	go func() {
		supDone <- sim.NewSupervisor(state, factory).Run(ctx)
	}()

	uiErr := tui.Run(mode, cfg, state)

	state.Shutdown()
	if err := <-supDone; err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	return uiErr
}

func runDash(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	state := simstate.New(
		simstate.Telemetry{TargetIndex: -1, Message: "Initializing..."},
		simstate.Controls{
			Factor:  config.ClampFactor(cfg.Factor),
			Inflow:  cfg.Tank.Inflow,
			Outflow: cfg.Tank.Outflow,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	supDone := make(chan error, 1)
	go func() {
		supDone <- sim.NewSupervisor(state, models.TankFactory(cfg.Tank)).Run(ctx)
	}()

	srvErr := dash.NewServer(cfg, state).Serve(ctx)

	state.Shutdown()
	if err := <-supDone; err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	return srvErr
}
