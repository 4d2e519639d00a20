package utils

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// AuditLogger writes one JSON line per CRUD operation to logs/crud.log.
// Every create/update/delete on orders and supermarkets is recorded
// with a before/after snapshot, whether it succeeded or not.
var AuditLogger *logrus.Logger

func InitAuditLogger() {
	AuditLogger = logrus.New()
	AuditLogger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})

	logDir := "logs"
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		ErrorLogger.Errorf("audit: could not create %s: %v", logDir, err)
		AuditLogger.SetOutput(os.Stderr)
		return
	}

	f, err := os.OpenFile(filepath.Join(logDir, "crud.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		ErrorLogger.Errorf("audit: could not open crud.log: %v", err)
		AuditLogger.SetOutput(os.Stderr)
		return
	}
	AuditLogger.SetOutput(f)
}

// Audit records a CRUD event. It must never break the request flow, so
// a missing logger falls back to a discarded writer instead of erroring.
func Audit(operation, entity string, id interface{}, user string, before, after interface{}, success bool, message string) {
	if AuditLogger == nil {
		AuditLogger = logrus.New()
		AuditLogger.SetOutput(io.Discard)
	}
	AuditLogger.WithFields(logrus.Fields{
		"operation": operation,
		"entity":    entity,
		"id":        id,
		"user":      user,
		"before":    before,
		"after":     after,
		"success":   success,
	}).Info(message)
}
