package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mlandesman/sams/balance"
	"github.com/mlandesman/sams/client"
	"github.com/mlandesman/sams/directory"
	"github.com/mlandesman/sams/ledger"
	"github.com/mlandesman/sams/plaindb"
	"github.com/mlandesman/sams/server"
	"github.com/mlandesman/sams/vcs"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func loadConfig() *viper.Viper {
	v := viper.New()
	v.SetDefault("addr", "0.0.0.0:8080")
	v.SetDefault("data", "./data")
	v.SetDefault("development", false)

	v.SetConfigName("sams")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.sams")
	v.SetEnvPrefix("sams")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.ReadInConfig() // config file is optional, env and defaults suffice
	return v
}

func run(config *viper.Viper, logger *zap.Logger) error {
	author := vcs.Author{
		Name:  config.GetString("author.name"),
		Email: config.GetString("author.email"),
	}
	db, err := plaindb.Open(
		config.GetString("data"),
		plaindb.VersionControl(author, nil),
	)
	if err != nil {
		return err
	}
	defer db.Close()

	clients, err := client.NewStore(db)
	if err != nil {
		return err
	}
	ledgerStore, err := ledger.NewStore(db, logger)
	if err != nil {
		return err
	}
	directoryStore, err := directory.NewStore(db)
	if err != nil {
		return err
	}
	snapshots, err := balance.NewStore(db)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	return server.Run(config.GetString("addr"), server.Stores{
		Clients:   clients,
		Ledger:    ledgerStore,
		Directory: directoryStore,
		Balances:  balance.NewService(snapshots, ledgerStore, directoryStore, clients, logger),
	}, logger)
}

func main() {
	config := loadConfig()

	logger, err := zap.NewProduction()
	if config.GetBool("development") {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(config, logger); err != nil {
		logger.Error("Server run failed", zap.Error(err))
		os.Exit(1)
	}
}
