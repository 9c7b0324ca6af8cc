package echoez

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// Prompter asks the local user for pairing decisions and credentials.
// console.Console is the interactive implementation.
type Prompter interface {
	Ask(prompt string) (string, error)
	AskSecret(prompt string) (string, error)
}

// Runtime carries everything the peripheral shares between its components:
// configuration, logger, bus connection and prompter. It is created once at
// startup and handed to Start.
type Runtime struct {
	Config   Config
	Log      logrus.FieldLogger
	Bus      Bus
	Prompter Prompter
}

// NewRuntime returns a Runtime. A nil log discards all output.
func NewRuntime(cfg Config, bus Bus, prompter Prompter, log logrus.FieldLogger) *Runtime {
	if log == nil {
		log = discardLogger()
	}
	return &Runtime{
		Config:   cfg,
		Log:      log,
		Bus:      bus,
		Prompter: prompter,
	}
}

// MainLoop blocks the caller until it is told to quit. Anything holding the
// loop (a registration callback, the agent) can stop it.
type MainLoop struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewMainLoop returns a loop that also stops when parent is done.
func NewMainLoop(parent context.Context) *MainLoop {
	ctx, cancel := context.WithCancel(parent)
	return &MainLoop{ctx: ctx, cancel: cancel}
}

// Run blocks until Quit is called or the parent context is done.
func (l *MainLoop) Run() {
	<-l.ctx.Done()
}

// Quit stops the loop. It may be called more than once.
func (l *MainLoop) Quit() {
	l.cancel()
}

// Done is closed once the loop has stopped.
func (l *MainLoop) Done() <-chan struct{} {
	return l.ctx.Done()
}

func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
