package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"addcss/misc"
)

type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

type LoggingConfig struct {
	FileLogger    LoggerConfig `yaml:"file"`
	ConsoleLogger LoggerConfig `yaml:"console"`
}

// Prepare returns our standard logger - configured zap logger for use by the
// program. When debug report is requested file log is always written at debug
// level and becomes part of the report.
func (conf *LoggingConfig) Prepare(rpt *Report) (*zap.Logger, error) {
	consoleLP, consoleHP := consoleCores(conf.ConsoleLogger.Level)

	level, mode := conf.FileLogger.Level, conf.FileLogger.Mode
	if rpt != nil {
		level, mode = "debug", "overwrite"
	}

	var (
		fileCore   = zapcore.NewNopCore()
		redirected string
	)
	if enabler, ok := fileLevel(level); ok {
		capturePanics(conf.FileLogger.Destination, mode, rpt)

		f, err := openLogFile(conf.FileLogger.Destination, mode)
		if err != nil {
			if f, err = os.CreateTemp("", misc.GetAppName()+".*.log"); err != nil {
				return nil, fmt.Errorf("unable to access file log destination (%s): %w", conf.FileLogger.Destination, err)
			}
			redirected = f.Name()
		}
		rpt.Store("final.log", f.Name())
		fileCore = zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(f), enabler)
	}

	log := zap.New(zapcore.NewTee(consoleHP, consoleLP, fileCore), zap.AddCaller())
	if len(redirected) != 0 {
		// log was redirected - we need to report this
		log.Warn("Log file was redirected to new location", zap.String("location", redirected))
	}
	return log.Named(misc.GetAppName()), nil
}

// consoleCores splits console output: errors go to stderr, everything else
// allowed by level goes to stdout. Colors are used when stream is a terminal.
func consoleCores(level string) (low, high zapcore.Core) {
	var lowest zapcore.Level
	switch level {
	case "normal":
		lowest = zapcore.InfoLevel
	case "debug":
		lowest = zapcore.DebugLevel
	default:
		return zapcore.NewNopCore(), zapcore.NewNopCore()
	}

	low = zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig(os.Stdout)), zapcore.Lock(os.Stdout),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lowest <= lvl && lvl < zapcore.ErrorLevel
		}))
	high = zapcore.NewCore(newEncoder(consoleEncoderConfig(os.Stderr)), zapcore.Lock(os.Stderr),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zapcore.ErrorLevel
		}))
	return low, high
}

func consoleEncoderConfig(stream *os.File) zapcore.EncoderConfig {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(stream) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return ec
}

func fileLevel(level string) (zap.AtomicLevel, bool) {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel), true
	case "normal":
		return zap.NewAtomicLevelAt(zap.InfoLevel), true
	}
	return zap.AtomicLevel{}, false
}

func openLogFile(fname, mode string) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if mode == "append" {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(fname, flags, 0644)
}

// capturePanics redirects crash output next to the log file if possible,
// failures are quietly ignored.
func capturePanics(destination, mode string, rpt *Report) {
	ef, err := openLogFile(filepath.Join(filepath.Dir(destination), misc.GetAppName()+"-panic.log"), mode)
	if err != nil {
		if ef, err = os.CreateTemp("", misc.GetAppName()+"-panic.*.log"); err != nil {
			return
		}
	}
	debug.SetCrashOutput(ef, debug.CrashOptions{})
	rpt.Store("panic.log", ef.Name())
	ef.Close()
}

// When logging error to console - do not output verbose message.

type consoleEnc struct {
	zapcore.Encoder
}

func newEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return consoleEnc{zapcore.NewConsoleEncoder(cfg)}
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	var newFields []zapcore.Field
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			// wrapped errors carry long chains, console gets flat message only
			e := f.Interface.(error)
			f.Interface = errors.New(e.Error())
		}
		newFields = append(newFields, f)
	}
	return c.Encoder.EncodeEntry(ent, newFields)
}
