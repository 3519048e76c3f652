package main

import (
	"errors"
	"log"
	"os"
	"syscall"

	"ctxpack/cmd"
	"ctxpack/pkg/version"

	"go.uber.org/zap"
	"golang.org/x/term"
)

func main() {
	logger, err := zap.NewProduction(zap.Fields(
		zap.String("appName", "ctxpack"),
		zap.String("appVersion", version.Get().Version),
	))
	if err != nil {
		log.Fatalf("ctxpack: cannot build logger: %v", err)
	}

	if err := cmd.Execute(logger); err != nil {
		logger.Fatal("ctxpack failed", zap.Error(err))
	}
	syncLogger(logger)
}

// syncLogger flushes logger when stderr can be synced. Pipes and character
// devices other than a terminal report EINVAL, which is not worth printing.
func syncLogger(logger *zap.Logger) {
	if !term.IsTerminal(int(os.Stderr.Fd())) && !isRegularFile(os.Stderr) {
		return
	}
	if err := logger.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) {
		log.Printf("ctxpack: logger sync failed: %v", err)
	}
}

func isRegularFile(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode().IsRegular()
}
