package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options controls how the room logger is built
type Options struct {
	// Debug lowers the level to debug
	Debug bool
	// JSON switches to the JSON formatter
	JSON bool
	// Promote reports debug and trace entries at info level. It does not
	// change the level, so it only matters together with Debug.
	Promote bool
	// Out defaults to stderr
	Out io.Writer
}

// New builds a logger from opts
func New(opts Options) *logrus.Logger {
	log := logrus.New()

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	log.SetOutput(out)

	var formatter logrus.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if opts.JSON {
		formatter = &logrus.JSONFormatter{}
	}

	log.SetLevel(logrus.InfoLevel)
	if opts.Debug {
		log.SetLevel(logrus.DebugLevel)
	}
	if opts.Promote {
		formatter = &promoteFormatter{Formatter: formatter}
	}
	log.SetFormatter(formatter)

	return log
}

// For tags every entry with the identity of src, which should be a pointer
func For(log logrus.FieldLogger, src interface{}) logrus.FieldLogger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return log.WithField("src", fmt.Sprintf("%p", src))
}

// promoteFormatter rewrites debug and trace entries as info
type promoteFormatter struct {
	logrus.Formatter
}

func (f *promoteFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry.Level <= logrus.InfoLevel {
		return f.Formatter.Format(entry)
	}
	promoted := *entry
	promoted.Level = logrus.InfoLevel
	return f.Formatter.Format(&promoted)
}
