package debug

import (
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"strconv"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

var (
	clientColor = color.New(color.FgGreen, color.Bold)
	serverColor = color.New(color.FgCyan)
)

// StartUtilities spins off the services associated with debug mode.
func StartUtilities(logger *logrus.Logger, pprofPort int) {
	startPprofServer(logger, pprofPort)
}

// This function starts the default pprof HTTP server that can be accessed via localhost
// to get runtime information about galacticd. See https://golang.org/pkg/net/http/pprof/
func startPprofServer(logger *logrus.Logger, port int) {
	listenerAddr := fmt.Sprintf("localhost:%d", port)
	logger.Infof("starting pprof server on %s", listenerAddr)

	go func() {
		if err := http.ListenAndServe(listenerAddr, nil); err != nil {
			logger.Infof("error starting pprof server: %s", err)
		}
	}()
}

type PrintLineParams struct {
	Writer     io.Writer
	ServerName string
	Client     string
	// True for lines typed by the player, false for text sent to them.
	ClientLine bool
	Line       string
}

// PrintLine writes a single protocol line in a readable form, quoting control
// characters so prompts and CRLFs stay visible.
func PrintLine(params PrintLineParams) {
	direction, c := "server -> "+params.Client, serverColor
	if params.ClientLine {
		direction, c = params.Client+" -> server", clientColor
	}
	c.Fprintf(params.Writer, "[%s] %s: %s\n", params.ServerName, direction, strconv.Quote(params.Line))
}
