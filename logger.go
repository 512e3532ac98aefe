package main

import (
	"github.com/mattn/go-colorable"
	"github.com/orandin/lumberjackrus"
	"github.com/sirupsen/logrus"
)

func newLogger(cfg Config) *logrus.Logger {
	logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	logrus.SetOutput(colorable.NewColorableStdout())
	logger := logrus.New()
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	logger.SetOutput(colorable.NewColorableStdout())
	if cfg.LogFile == "" {
		return logger
	}
	hook, err := lumberjackrus.NewHook(
		&lumberjackrus.LogFile{
			Filename:   cfg.LogFile,
			MaxSize:    100,
			MaxBackups: 1,
			MaxAge:     1,
			Compress:   true,
		},
		logrus.InfoLevel,
		&logrus.JSONFormatter{},
		&lumberjackrus.LogFileOpts{},
	)
	if err != nil {
		panic(err)
	}
	logger.AddHook(hook)
	return logger
}
