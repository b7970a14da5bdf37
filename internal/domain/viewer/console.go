package viewer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/bookview/internal/domain/shell"
)

// ConsoleLevel is the severity of a console message
type ConsoleLevel int

const (
	ConsoleInfo ConsoleLevel = iota
	ConsoleWarning
	ConsoleError
)

func (l ConsoleLevel) String() string {
	switch l {
	case ConsoleWarning:
		return "WARNING"
	case ConsoleError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ConsoleMessage logs a message from the surface. Errors raised by the
// viewer script itself are also reported to the host.
func (v *View) ConsoleMessage(level ConsoleLevel, message string, line int, source string) {
	fields := []zap.Field{
		zap.String("level", level.String()),
		zap.String("source", source),
		zap.Int("line", line),
	}

	switch level {
	case ConsoleError:
		v.logger.Error(message, fields...)
		if source == shell.ScriptName {
			v.host.ShowError("Error in viewer", fmt.Sprintf("%s:%d: %s", source, line, message))
		}
	case ConsoleWarning:
		v.logger.Warn(message, fields...)
	default:
		v.logger.Info(message, fields...)
	}
}

// RenderProcessDied reports a renderer crash to the host once. Later
// crashes are only logged.
func (v *View) RenderProcessDied(status string, exitCode int) {
	v.logger.Error("Render process died",
		zap.String("status", status), zap.Int("exit_code", exitCode))
	if v.crashNotified {
		return
	}
	v.crashNotified = true
	v.host.ShowError("Render process crashed",
		fmt.Sprintf("The render process crashed with status %s and exit code %d.", status, exitCode))
}
