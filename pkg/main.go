package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	pkg "github.com/veritas-social/ranker/pkg/internal"
	"github.com/veritas-social/ranker/pkg/internal/cache"
	"github.com/veritas-social/ranker/pkg/internal/database"
	"github.com/veritas-social/ranker/pkg/internal/services"

	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.MagentaString("__     __        _ _\n\\ \\   / /__ _ __(_) |_ __ _ ___\n \\ \\ / / _ \\ '__| | __/ _` / __|\n  \\ V /  __/ |  | | || (_| \\__ \\\n   \\_/ \\___|_|  |_|\\__\\__,_|___/"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiMagenta).Add(color.Bold).Sprintf("Veritas.Ranker"), pkg.AppVersion)
	fmt.Printf("The social graph ranking and moderation engine in Veritas\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	// Prepare cache
	if err := cache.NewStore(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when initializing cache.")
	}

	// Connect to database
	if err := database.NewGorm(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	} else if err := services.SeedFameLevels(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when seeding fame levels.")
	}

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 60m", services.DoAutoDatabaseCleanup)
	quartz.Start()

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	quartz.Stop()
}
