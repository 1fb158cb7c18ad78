package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/BrugadaSyndrome/bslogger"

	"mandelbrot/mandelbrot"
	"mandelbrot/misc"
	"mandelbrot/pool"
	"mandelbrot/render"
	"mandelbrot/task"
)

func main() {
	logger := bslogger.NewLogger("Mandelbrot", bslogger.Normal, nil)

	flags := newFlagSet(os.Args[0], flag.ExitOnError)
	args, err := parseArguments(flags, os.Args[1:])
	misc.CheckError(err, logger, misc.Fatal)
	if len(args) < 5 {
		printUsage(os.Stdout, flags)
		os.Exit(usageExitCode)
	}

	viewport, err := parseViewport(args)
	misc.CheckError(err, logger, misc.Fatal)
	settings, err := buildSettings(viewport, setFlags(flags))
	misc.CheckError(err, logger, misc.Fatal)
	renderer := mandelbrot.NewMandelbrot(settings.Viewport)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// A process started by the launcher is one rank of its pool and never launches further processes
	member, isMember, err := pool.SettingsFromEnvironment()
	misc.CheckError(err, logger, misc.Fatal)

	switch {
	case isMember:
		err = runMember(ctx, member, settings, &renderer)
	case launchCount > 0:
		logger.Debug(settings.String())
		err = launch(ctx, launchCount, os.Args[1:])
	default:
		logger.Debug(settings.String())
		err = render.RunLocal(ctx, localCount, settings, &renderer)
	}
	misc.CheckError(err, logger, misc.Fatal)
}

func runMember(ctx context.Context, member pool.Settings, settings render.Settings, renderer task.RowRenderer) error {
	comm, err := pool.NewTcp(member)
	if err != nil {
		return err
	}
	comm.Logger.Debug(member.String())

	err = render.Run(ctx, comm, settings, renderer)
	closeErr := comm.Close()
	if err != nil {
		return err
	}
	return closeErr
}
