package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/songzhibin97/merchant/internal/configs"
	chatexapi "github.com/songzhibin97/merchant/internal/exchange/chatex"
	"github.com/songzhibin97/merchant/internal/risk"
	"github.com/songzhibin97/merchant/internal/trading"
	"github.com/songzhibin97/merchant/internal/trading/binance"
	"github.com/songzhibin97/merchant/internal/trading/chatex"
	"github.com/songzhibin97/merchant/internal/utils/logger"
	"github.com/songzhibin97/merchant/internal/utils/request"
)

var flagconf string

func init() {
	flag.StringVar(&flagconf, "conf", "", "config path, eg: -conf config.yaml")
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: merchant [-conf config] <command> [flags]

Commands:
  best     print the best resting order of a trading pair
  book     print the best resting orders of a trading pair
  orders   print my open orders of a trading pair
  trade    execute (market) or place (limit) an order
  update   amend an open order
  cancel   cancel an open order
  balance  print coin balances
  watch    stream the best order of the configured pairs

`)
	flag.PrintDefaults()
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	config, err := configs.Load(flagconf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(config.Log.Level, config.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Debug("loaded config",
		zap.String("exchange", config.Exchange),
		zap.Strings("pairs", config.Pairs),
		zap.Bool("risk_enabled", config.RiskEnabled()))

	if config.Proxy != "" {
		_ = os.Setenv("HTTP_PROXY", config.Proxy)
		_ = os.Setenv("HTTPS_PROXY", config.Proxy)
		log.Debug("set proxy ok", zap.String("proxy", config.Proxy))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.MetricsAddr != "" {
		go serveMetrics(ctx, config.MetricsAddr, log)
	}

	app := NewApp(config, newMerchant(config, log), os.Stdout, log)
	if err := app.Run(ctx, flag.Args()); err != nil {
		log.Error("command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		os.Exit(1)
	}
}

func newMerchant(config *configs.Config, log *zap.Logger) trading.Merchant {
	switch config.Exchange {
	case configs.ExchangeBinance:
		client := binance.NewClient(config.ExchangeConfig.APIKey, config.ExchangeConfig.SecretKey, config.ExchangeConfig.Debug)
		log.Debug("init binance merchant", zap.Bool("testnet", config.ExchangeConfig.Debug))
		return binance.NewBinanceMerchant(client,
			binance.WithEpsilon(config.TradingConfig.Epsilon),
			binance.WithBookDepth(config.TradingConfig.BookDepth),
			binance.WithTraderLogger(log))
	default:
		httpClient := request.New(config.Chatex.RetryCount, config.ChatexTimeout())
		client := chatexapi.NewClient(config.Chatex.BaseURL, config.Chatex.RefreshToken, httpClient,
			chatexapi.WithLogger(log))
		log.Debug("init chatex merchant")
		return chatex.NewChatexMerchant(client,
			chatex.WithEpsilon(config.TradingConfig.Epsilon),
			chatex.WithBookDepth(config.TradingConfig.BookDepth),
			chatex.WithTraderLogger(log))
	}
}

// newTrader puts the risk manager in front of the venue trader when configured.
func newTrader(config *configs.Config, m trading.Merchant, log *zap.Logger) trading.Trader {
	if !config.RiskEnabled() {
		return m.Trader()
	}
	return risk.NewGuardedTrader(m.Trader(), risk.NewBasicRiskManager(config.RiskParams), m.Name(), log)
}

func serveMetrics(ctx context.Context, addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server failed", zap.Error(err))
	}
}
