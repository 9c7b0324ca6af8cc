// Command echoez runs a Bluetooth Low Energy echo server through BlueZ.
//
// Anything a central writes to one of the echo characteristics is read back
// unchanged. The three characteristics differ only in the link security
// BlueZ demands before serving them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mdegans/echoez"
	"github.com/mdegans/echoez/console"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "echoez"
	app.Usage = "Simple Bluetooth Low Energy Echo Server"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "name", Value: echoez.DefaultConfig().Name, Usage: "to advertise service as (letters only)"},
		cli.BoolFlag{Name: "verbose, v", Usage: "log debug messages"},
		cli.StringFlag{Name: "config, c", Usage: "YAML configuration file"},
		cli.StringFlag{Name: "adapter", Usage: "adapter to use, such as hci0"},
		cli.BoolFlag{Name: "strict-cleanup", Usage: "fail if the advertisement cannot be unregistered on exit"},
	}
	app.Action = run
	return app
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.NewExitError(err.Error(), echoez.StatusInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return cli.NewExitError(err.Error(), echoez.StatusInvalidConfig)
	}

	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	bus, err := echoez.SystemBus()
	if err != nil {
		return err
	}
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := echoez.NewRuntime(cfg, bus, console.New(), log)
	if status := echoez.Start(ctx, rt); status != echoez.StatusOK {
		return cli.NewExitError("", status)
	}
	return nil
}

// loadConfig reads the optional config file and applies the flags on top of
// it.
func loadConfig(c *cli.Context) (echoez.Config, error) {
	cfg := echoez.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = echoez.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	if c.IsSet("name") {
		cfg.Name = c.String("name")
	}
	if c.IsSet("verbose") {
		cfg.Verbose = c.Bool("verbose")
	}
	if c.IsSet("adapter") {
		cfg.Adapter = c.String("adapter")
	}
	if c.IsSet("strict-cleanup") {
		cfg.StrictCleanup = c.Bool("strict-cleanup")
	}
	return cfg, nil
}
