/*
 * Logging-related functions, used for optional diagnostic tracing of
 * the tokenizing reader and property emitter state machines. This is
 * never the channel used to deliver reader warnings (MALFORMED_LINE,
 * UNMATCHED_END, ...) to a caller's listener -- those travel through
 * explicit callback values, not logs.
 *
 * (c) 2011-2012 Bernd Fix   >Y<
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or (at
 * your option) any later version.
 *
 * This program is distributed in the hope that it will be useful, but
 * WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package logger

///////////////////////////////////////////////////////////////////////
// Import external declarations

import (
	"fmt"
	"os"
	"time"
)

///////////////////////////////////////////////////////////////////////
// Logging constants

const (
	// CRITICAL errors
	CRITICAL = iota
	// SEVERE errors
	SEVERE
	// ERROR message
	ERROR
	// WARN for warning messages
	WARN
	// INFO is for informational messages
	INFO
	// DBG for debug messages, e.g. per-character state transitions
	DBG
)

///////////////////////////////////////////////////////////////////////
// Local types

// logMsg is a single formatted log request queued to the writer goroutine.
type logMsg struct {
	ts    time.Time
	level int
	text  string
}

type logger struct {
	msgChan chan logMsg  // messages to be logged
	out     *os.File     // current output (stdout by default)
	level   int          // current log level
	format  Formatter    // rendering function
}

///////////////////////////////////////////////////////////////////////
// Local variables

var (
	logInst *logger // singleton logger instance
)

///////////////////////////////////////////////////////////////////////
// Logger-internal methods / functions

/*
 * Instantiate new logger (to stdout) and run its handler loop.
 */
func init() {
	logInst = &logger{
		msgChan: make(chan logMsg, 64),
		out:     os.Stdout,
		level:   WARN,
		format:  SimpleFormat,
	}
	go func() {
		for msg := range logInst.msgChan {
			logInst.out.WriteString(logInst.format(&msg))
		}
	}()
}

///////////////////////////////////////////////////////////////////////
// Public logging functions.

// Println punches logging data for the given level.
func Println(level int, line string) {
	if level <= logInst.level {
		logInst.msgChan <- logMsg{ts: time.Now(), level: level, text: line}
	}
}

//---------------------------------------------------------------------

// Printf punches formatted logging data for the given level.
func Printf(level int, format string, v ...interface{}) {
	if level <= logInst.level {
		logInst.msgChan <- logMsg{ts: time.Now(), level: level, text: fmt.Sprintf(format, v...)}
	}
}

//=====================================================================
// Configuration
//=====================================================================

// SetOutput redirects log messages to f (os.Stdout by default).
func SetOutput(f *os.File) {
	logInst.out = f
}

//---------------------------------------------------------------------

// SetFormatter selects the rendering function applied to each message.
func SetFormatter(f Formatter) {
	logInst.format = f
}

//---------------------------------------------------------------------

// GetLogLevel returns the current numeric log level.
func GetLogLevel() int {
	return logInst.level
}

//---------------------------------------------------------------------

// SetLogLevel sets the logging level from a numeric value.
func SetLogLevel(lvl int) {
	if lvl < CRITICAL || lvl > DBG {
		Printf(WARN, "[logger] unknown loglevel '%d' requested -- ignored.\n", lvl)
		return
	}
	logInst.level = lvl
}

//---------------------------------------------------------------------

// getTag returns the loglevel tag as a message prefix.
func getTag(level int) string {
	switch level {
	case CRITICAL:
		return "CRIT"
	case SEVERE:
		return "SEVR"
	case ERROR:
		return "ERR "
	case WARN:
		return "WARN"
	case INFO:
		return "INFO"
	case DBG:
		return "DBG "
	}
	return "????"
}
