package main

import (
	"log/slog"
	"net/http"
	"os"

	_ "net/http/pprof" // profiling

	"sim86/internal/sim86/cmd"
	"sim86/internal/sim86/log"
)

func main() {
	defer log.RecoverPanic("main", func() {
		slog.Error("sim86 terminated due to unhandled panic")
	})

	if os.Getenv("SIM86_PROFILE") != "" {
		go func() {
			slog.Info("Serving pprof at localhost:6060")
			if httpErr := http.ListenAndServe("localhost:6060", nil); httpErr != nil {
				slog.Error("Failed to pprof listen", "error", httpErr)
			}
		}()
	}

	cmd.Execute()
}
