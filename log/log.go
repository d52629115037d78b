package log

import (
	"os"

	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("cloud-deploy")

func init() {
	log.ExtraCalldepth = 1

	var backend logging.Backend = logging.NewLogBackend(os.Stderr, "", 0)
	backend = logging.NewBackendFormatter(backend, logging.MustStringFormatter(GetTextFormat()))
	log.SetBackend(logging.AddModuleLevel(backend))
}

// SetLevel adjusts the minimum level that will be emitted; unknown names
// leave the level unchanged and return the parse error.
func SetLevel(name string) error {
	level, err := logging.LogLevel(name)
	if err != nil {
		return err
	}
	logging.SetLevel(level, "cloud-deploy")
	return nil
}

func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func Warningf(format string, args ...interface{}) {
	log.Warningf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

func Warning(args ...interface{}) {
	log.Warning(args...)
}

func Error(args ...interface{}) {
	log.Error(args...)
}
