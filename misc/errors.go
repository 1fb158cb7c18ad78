package misc

import (
	"errors"

	"github.com/BrugadaSyndrome/bslogger"
)

const (
	Fatal Severity = iota
	Error
	Warning
	Info
	Debug
)

var (
	// ErrUsage means the program was invoked without enough positional arguments
	ErrUsage = errors.New("not enough arguments")
	// ErrPoolTooSmall means the pool cannot run the chosen strategy, e.g. a master/worker render with zero workers
	ErrPoolTooSmall = errors.New("process pool too small for strategy")
	// ErrAllocation means a row or image buffer would exceed what the process can address
	ErrAllocation = errors.New("unable to allocate buffer")
)

type Severity int

func (s Severity) String() string {
	return []string{
		"Fatal", "Error", "Warning", "Info", "Debug",
	}[s]
}

// Nothing is the empty request or reply of an rpc call
type Nothing struct{}

func CheckError(err error, logger bslogger.Logger, severity Severity) {
	if err == nil {
		return
	}
	switch severity {
	case Fatal:
		logger.Fatal(err.Error())
	case Error:
		logger.Error(err.Error())
	case Warning:
		logger.Warning(err.Error())
	case Info:
		logger.Info(err.Error())
	case Debug:
		logger.Debug(err.Error())
	default:
		logger.Fatal(err.Error())
	}
}
