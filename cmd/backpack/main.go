package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/logrusorgru/aurora"
	"github.com/rs/zerolog/log"

	"backpack/internal/infrastructure/config"
	"backpack/internal/infrastructure/logger"
	"backpack/internal/infrastructure/svc"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (optional)")
	envPath := flag.String("env", ".env", "dotenv file with BACKPACK_API_SECRET")
	noColor := flag.Bool("no-color", false, "disable colored status output")
	flag.Usage = usage
	flag.Parse()

	// a missing .env is fine; credentials may come from the config or the shell
	_ = godotenv.Load(*envPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Setup("info")
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	logger.Setup(cfg.Log.Level)

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := svc.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("service initialization failed")
	}
	defer sc.Close()

	cli := &CLI{client: sc.Client, out: os.Stdout, au: aurora.NewAurora(!*noColor)}
	if err := cli.Run(ctx, flag.Args()); err != nil {
		log.Error().Err(err).Str("command", flag.Arg(0)).Msg("command failed")
		_ = sc.Close()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: backpack [flags] <command> [args]\n\ncommands:\n")
	for _, c := range commands {
		fmt.Fprintf(flag.CommandLine.Output(), "  %-16s %s\n", c.name+" "+c.args, c.help)
	}
	fmt.Fprintf(flag.CommandLine.Output(), "\nflags:\n")
	flag.PrintDefaults()
}
