package storage

import (
	"errors"
	"os"

	"go.uber.org/zap"
)

// RemoveLocal löscht eine lokale Arbeitsdatei. Eine fehlende Datei ist kein Fehler.
func RemoveLocal(path string, logger *zap.Logger) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("could not remove local file", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Debug("removed local file", zap.String("path", path))
}
