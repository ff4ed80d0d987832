// The galacticd command runs the Galactic Turtle game server. It takes care
// of reading the configuration, optionally detaching from the terminal, and
// running the server until it is told to stop.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/galacticturtle/galacticd/internal"
	"github.com/galacticturtle/galacticd/internal/core"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "1.0"

var (
	portFlag         = flag.IntP("port", "p", core.DefaultPort, "Port to listen on")
	daemonizeFlag    = flag.BoolP("daemonize", "d", false, "Detach from the terminal and run in the background")
	reallyRandomFlag = flag.BoolP("really-random", "r", false, "Use the remote random number service instead of the local PRNG")
	versionFlag      = flag.BoolP("version", "v", false, "Print the version and exit")
	configFlag       = flag.StringP("config", "c", "./", "Path to the directory containing the server config file")
)

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Galactic Turtle %s\n", Version)
		os.Exit(0)
	}

	// A missing .env file is fine, the environment is used as it is.
	_ = godotenv.Load()

	v := viper.New()
	if err := v.BindPFlag("port", flag.Lookup("port")); err != nil {
		fail("error binding port flag:", err)
	}
	if err := v.BindPFlag("really_random", flag.Lookup("really-random")); err != nil {
		fail("error binding really-random flag:", err)
	}
	config, err := core.LoadConfig(v, *configFlag)
	if err != nil {
		fail("error loading configuration:", err)
	}

	if *daemonizeFlag {
		if err := daemonize(); err != nil {
			fail("error daemonizing:", err)
		}
	}

	if !isDaemon() {
		color.New(color.FgYellow, color.Bold).Println("Galactic Turtle! (.-.)")
		fmt.Println("========================")
		fmt.Println("using configuration directory:", *configFlag)
		fmt.Println("listening on", config.ListenAddress())
	}

	// Bind the Controller to one top-level server context so that we can shut down cleanly.
	ctx, cancel := context.WithCancel(context.Background())

	// Register a SIGTERM handler so that Ctrl-C will shut the server down gracefully.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go exitHandler(cancel, c)

	// Start up the controller to handle all of the resources and server init.
	controller := &internal.Controller{
		Config: config,
	}
	if err := controller.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fail("error running server:", err)
	}
	fmt.Println("shut down")
}

func fail(msg string, err error) {
	fmt.Fprintln(os.Stderr, msg, err)
	os.Exit(1)
}

func exitHandler(cancelFn func(), c chan os.Signal) {
	<-c
	fmt.Println("waiting to shut down gracefully...")
	cancelFn()

	// A second signal skips the graceful shutdown.
	<-c
	fmt.Println("hard exiting (killed)")
	os.Exit(1)
}
