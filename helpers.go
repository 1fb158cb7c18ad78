package main

import (
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"mandelbrot/mandelbrot"
	"mandelbrot/misc"
	"mandelbrot/pool"
	"mandelbrot/render"
	"mandelbrot/task"
)

// usageExitCode is the status when too few arguments are given. Printing usage is treated as a successful run.
const usageExitCode = 0

var (
	compress                                                bool
	heartbeatSeconds, launchCount, localCount               int
	host, outputFile, settingsFile, strategyName, transport string
)

func newFlagSet(name string, errorHandling flag.ErrorHandling) *flag.FlagSet {
	flags := flag.NewFlagSet(name, errorHandling)
	flags.StringVar(&strategyName, "strategy", task.Sequential.String(), "Row distribution: sequential, centralized, dynamic or decentralized")
	flags.StringVar(&outputFile, "output", "", "Image file to write (default mandelbrot_<strategy>.ppm)")
	flags.StringVar(&settingsFile, "settings", "", "Json file with render settings")
	flags.IntVar(&heartbeatSeconds, "heartbeat", 0, "Seconds between coordinator progress reports")

	// Pool values
	flags.IntVar(&localCount, "local", 1, "Number of ranks to run inside this process")
	flags.IntVar(&launchCount, "launch", 0, "Number of processes of this program to launch as a pool")
	flags.StringVar(&transport, "transport", pool.TransportTcp, "Transport between launched processes: tcp or http")
	flags.BoolVar(&compress, "compress", false, "Compress rows sent between launched processes")
	flags.StringVar(&host, "host", "127.0.0.1", "Host launched processes listen on, empty for this machine's network address")

	flags.Usage = func() {
		printUsage(flags.Output(), flags)
	}
	return flags
}

// parseArguments parses flags and returns the positional arguments
func parseArguments(flags *flag.FlagSet, args []string) ([]string, error) {
	err := flags.Parse(separatePositional(flags, args))
	return flags.Args(), err
}

// separatePositional ends flag parsing at the first number that is not a flag's value, so negative bounds such as
// -2.5 are read as positional arguments rather than unknown flags
func separatePositional(flags *flag.FlagSet, args []string) []string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return args
		}
		if _, err := strconv.ParseFloat(arg, 64); err == nil {
			separated := append([]string{}, args[:i]...)
			separated = append(separated, "--")
			return append(separated, args[i:]...)
		}
		if !strings.HasPrefix(arg, "-") {
			return args
		}

		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if f := flags.Lookup(name); f != nil && !isBoolFlag(f) {
			// The next argument is this flag's value
			i++
		}
	}
	return args
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

func printUsage(w io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: mandelbrot [flags] x_min x_max y_min y_max image_size")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Example regions:")

	names := make([]string, 0, len(mandelbrot.Regions))
	for name := range mandelbrot.Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := mandelbrot.Regions[name]
		fmt.Fprintf(w, "  %-22s %g %g %g %g 1000\n", name, v.XMin, v.XMax, v.YMin, v.YMax)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	flags.SetOutput(w)
	flags.PrintDefaults()
}

// parseViewport reads the five positional arguments
func parseViewport(args []string) (mandelbrot.Viewport, error) {
	var v mandelbrot.Viewport
	if len(args) < 5 {
		return v, fmt.Errorf("%w: got %d of 5", misc.ErrUsage, len(args))
	}

	names := []string{"x_min", "x_max", "y_min", "y_max"}
	bounds := []*float64{&v.XMin, &v.XMax, &v.YMin, &v.YMax}
	for i, bound := range bounds {
		var err error
		*bound, err = strconv.ParseFloat(args[i], 64)
		if err != nil {
			return v, fmt.Errorf("%s %q is not a number - %w", names[i], args[i], err)
		}
	}

	var err error
	v.ImageSize, err = strconv.Atoi(args[4])
	if err != nil {
		return v, fmt.Errorf("image_size %q is not an integer - %w", args[4], err)
	}
	return v, v.Verify()
}

// buildSettings layers the settings file, then flags given on the command line, then the positional viewport
func buildSettings(viewport mandelbrot.Viewport, set map[string]bool) (render.Settings, error) {
	var settings render.Settings
	if settingsFile != "" {
		var err error
		settings, err = render.ReadSettings(settingsFile)
		if err != nil {
			return settings, err
		}
	}

	if set["strategy"] || settingsFile == "" {
		strategy, err := task.ParseStrategy(strategyName)
		if err != nil {
			return settings, err
		}
		settings.Strategy = strategy
	}
	if set["output"] {
		settings.OutputFile = outputFile
	}
	if set["heartbeat"] {
		settings.HeartbeatSeconds = heartbeatSeconds
	}
	settings.Viewport = viewport

	return settings, settings.Verify()
}

// setFlags names the flags given explicitly on the command line
func setFlags(flags *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}
