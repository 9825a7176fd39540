package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/ogurasousui/hiring-ingest/internal/platform/config"
)

// New は設定に従って logrus ロガーを構築します。不明なレベルは info に落とします。
func New(cfg config.LoggingConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}
