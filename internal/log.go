package internal

import (
	"fmt"
	"os"

	"github.com/mitchellh/colorstring"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NO_COLOR disables color codes in console output.
var NO_COLOR = false

func colorizer() colorstring.Colorize {
	return colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: NO_COLOR,
		Reset:   true,
	}
}

// colorize expands [color] tags, or strips them when color is disabled.
func colorize(text string) string {
	c := colorizer()
	return c.Color(text)
}

// Log prints message in the given color.
func Log(color, message string) {
	switch color {
	case "purple":
		color = "magenta"
	case "red", "green", "yellow", "cyan", "blue", "magenta":
	default:
		fmt.Println(message)
		return
	}
	fmt.Println(colorize("[" + color + "]" + message))
}

// NewLogger builds the engine logger: warnings only on stderr, or everything
// with verbose.
func NewLogger(verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	if NO_COLOR {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}
