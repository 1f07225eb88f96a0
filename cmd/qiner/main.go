// Qiner: a Qubic proof-of-useful-work miner
// Copyright (C) 2026  Guillermo Perry
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"qiner/internal/config"
	"qiner/internal/miner"
)

var showVersion = flag.Bool("version", false, "print version and exit")

const version = "0.1.0"

func main() {
	flag.Parse()

	if *showVersion {
		log.Printf("qiner %s", version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	m, err := miner.New(cfg)
	if err != nil {
		log.Fatalf("miner: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("shutdown signal received, draining submission queue...")
		cancel()
	}()

	log.Printf("qiner starting: workers=%d threshold=%d peer=%s:%d id=%s",
		cfg.NumWorkers, cfg.SolutionThreshold, cfg.ServerIP, cfg.ServerPort, cfg.ID)
	m.Run(ctx)
	log.Println("qiner stopped")
}
