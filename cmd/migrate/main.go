package main

import (
	"context" // Command deadline
	"fmt"     // Usage output
	"os"      // Arguments
	"strconv" // Seed count
	"time"    // Command deadline

	"paylite/internal/config" // Custom import path (Config)
	"paylite/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus"
)

const usage = `Usage: migrate <command>

Commands:
  init                                  create or update tables
  drop                                  drop every table
  seed [count]                          create count demo users (default 10)
  admin <email> <username> <password>   create an admin account`

// Main entry point for migration
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "init":
		err = db.Migrate(gdb)
	case "drop":
		err = db.Drop(gdb)
	case "seed":
		count := 10
		if len(args) > 0 {
			if count, err = strconv.Atoi(args[0]); err != nil || count < 1 {
				logrus.Fatalf("seed count must be a positive integer, got %q", args[0])
			}
		}
		err = runSeed(ctx, cfg, gdb, count)
	case "admin":
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		err = createAdmin(ctx, cfg, gdb, args[0], args[1], args[2])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logrus.Fatalf("%s failed: %v", os.Args[1], err)
	}
}
