// Package logger envuelve zerolog con los valores por defecto del servicio:
// consola legible en development, JSON estructurado en cualquier otro entorno.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones del logger.
type Config struct {
	Env   string // development habilita la salida de consola
	Level string // debug, info, warn, error; vacío = según Env
}

// Logger logger estructurado del servicio.
type Logger struct {
	zl zerolog.Logger
}

// New crea el logger. Con Level vacío, development loguea en debug y el resto de
// entornos en info. También redirige el logger global de zerolog para librerías
// que escriban a través de él.
func New(cfg Config) *Logger {
	development := cfg.Env == "development"

	var w io.Writer = os.Stdout
	if development {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zl := zerolog.New(w).Level(levelFor(cfg.Level, development)).With().Timestamp().Logger()
	log.Logger = zl

	return &Logger{zl: zl}
}

func levelFor(s string, development bool) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	if development {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// Debug, Info, Warn, Error, Fatal delegados a zerolog.
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With crea un sublogger con campos fijos.
func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}

// Zerolog devuelve el logger interno por si se necesita la API directa.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}
