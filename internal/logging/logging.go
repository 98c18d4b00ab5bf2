// Package logging configures logrus for the isrmx binaries. The returned
// *logrus.Entry satisfies calculation.Logger.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

var levels = map[string]logrus.Level{
	"trace": logrus.TraceLevel,
	"debug": logrus.DebugLevel,
	"info":  logrus.InfoLevel,
	"warn":  logrus.WarnLevel,
	"error": logrus.ErrorLevel,
}

// ParseLevel maps a level name to a logrus level.
func ParseLevel(name string) (logrus.Level, error) {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l, nil
	}
	return logrus.InfoLevel, fmt.Errorf("log level must be one of trace, debug, info, warn, error; got %q", name)
}

// New returns an entry tagged with the module name, writing text logs to out.
func New(out io.Writer, module, level string) (*logrus.Entry, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.0000",
	})
	return l.WithField("module", module), nil
}
