// Package migratelog gives the rest of this module gVisor's familiar
// log.Infof/Warningf/Debugf call surface, backed by logrus rather than
// gVisor's own pkg/log (which this module does not vendor). Diagnostics
// required by spec.md §7 ("emit a diagnostic") all go through here so
// they carry structured fields (nid, arch, op) instead of being loose
// fmt.Fprintln calls to stderr.
package migratelog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// std is the package-level logger every call site uses, mirroring
// gVisor's package-level log functions. Tests may swap std.Out to
// capture output.
var std = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetDebug turns on Debugf output. Production deployments leave this off;
// it is wired to the same intent as the teacher's --debug flag.
func SetDebug(on bool) {
	if on {
		std.SetLevel(logrus.DebugLevel)
	} else {
		std.SetLevel(logrus.InfoLevel)
	}
}

// Infof logs at info level.
func Infof(format string, args ...any) {
	std.Infof(format, args...)
}

// Warningf logs at warning level. Used for every non-fatal diagnostic
// spec.md §7 calls for (unavailable destination node, rewrite failure,
// migration primitive failure, topology query failure).
func Warningf(format string, args ...any) {
	std.Warnf(format, args...)
}

// Debugf logs at debug level. Used for the optional stack-rewrite timing
// instrumentation (SPEC_FULL.md §4).
func Debugf(format string, args ...any) {
	std.Debugf(format, args...)
}

// WithFields returns an entry pre-populated with structured context, for
// call sites that want to attach nid/arch/op without building the format
// string by hand.
func WithFields(fields map[string]any) *logrus.Entry {
	return std.WithFields(logrus.Fields(fields))
}
