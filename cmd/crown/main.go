package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	crowncmd "github.com/louisbranch/hippycrown/internal/cmd/crown"
	entrypoint "github.com/louisbranch/hippycrown/internal/platform/cmd"
)

func main() {
	cfg, err := crowncmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[CROWN] ")
	log.SetOutput(entrypoint.LogWriter(cfg.LogFile, os.Stderr))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := crowncmd.Run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalf("crown: %v", err)
	}
}
