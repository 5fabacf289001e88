package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/songzhibin97/merchant/internal/configs"
	"github.com/songzhibin97/merchant/internal/trading"
	"github.com/songzhibin97/merchant/internal/watcher"
)

// App runs a single command against one venue merchant.
type App struct {
	config   *configs.Config
	merchant trading.Merchant
	trader   trading.Trader
	out      io.Writer
	logger   *zap.Logger
}

func NewApp(config *configs.Config, merchant trading.Merchant, out io.Writer, logger *zap.Logger) *App {
	return &App{
		config:   config,
		merchant: merchant,
		trader:   newTrader(config, merchant, logger),
		out:      out,
		logger:   logger,
	}
}

// Run dispatches args[0] to its command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}

	a.logger.Debug("running command",
		zap.String("merchant", a.merchant.Name()),
		zap.Strings("args", args))

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "best":
		return a.best(ctx, rest)
	case "book":
		return a.book(ctx, rest)
	case "orders":
		return a.orders(ctx, rest)
	case "trade":
		return a.trade(ctx, rest)
	case "update":
		return a.update(ctx, rest)
	case "cancel":
		return a.cancel(ctx, rest)
	case "balance":
		return a.balance(ctx, rest)
	case "watch":
		return a.watch(ctx, rest)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// pairFlags registers -pair, -side and -target on fs.
type pairFlags struct {
	pair, side, target string
}

func (p *pairFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&p.pair, "pair", "TON/USDT", "coin pair, eg: TON/USDT")
	fs.StringVar(&p.side, "side", "buy", "buy or sell")
	fs.StringVar(&p.target, "target", "market", "market or limit")
}

func (p *pairFlags) tradingPair() (trading.TradingPair, error) {
	coins, err := trading.ParseCoinPairID(p.pair)
	if err != nil {
		return trading.TradingPair{}, err
	}
	side, err := trading.ParseSide(p.side)
	if err != nil {
		return trading.TradingPair{}, err
	}
	target, err := trading.ParseTarget(p.target)
	if err != nil {
		return trading.TradingPair{}, err
	}
	return trading.TradingPair{Coins: coins, Side: side, Target: target}, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parsePair(name string, args []string) (trading.TradingPair, error) {
	var p pairFlags
	fs := newFlagSet(name)
	p.register(fs)
	if err := fs.Parse(args); err != nil {
		return trading.TradingPair{}, err
	}
	return p.tradingPair()
}

func parseOrder(name string, args []string, id *string) (trading.Order, error) {
	var (
		p             pairFlags
		price, amount float64
	)
	fs := newFlagSet(name)
	p.register(fs)
	fs.Float64Var(&price, "price", 0, "price, quote per base")
	fs.Float64Var(&amount, "amount", 0, "amount of base coin")
	if id != nil {
		fs.StringVar(id, "id", "", "venue order id")
	}
	if err := fs.Parse(args); err != nil {
		return trading.Order{}, err
	}
	tp, err := p.tradingPair()
	if err != nil {
		return trading.Order{}, err
	}
	order := trading.Order{TradingPair: tp, Price: price, Amount: amount}
	if err := order.Validate(); err != nil {
		return trading.Order{}, err
	}
	if id != nil && *id == "" {
		return trading.Order{}, fmt.Errorf("missing order id")
	}
	return order, nil
}

func (a *App) best(ctx context.Context, args []string) error {
	tp, err := parsePair("best", args)
	if err != nil {
		return err
	}
	order, err := a.merchant.Sniffer().TheBestOrder(ctx, tp)
	if err != nil {
		return err
	}
	return a.print(order)
}

func (a *App) book(ctx context.Context, args []string) error {
	var (
		p     pairFlags
		count int
	)
	fs := newFlagSet("book")
	p.register(fs)
	fs.IntVar(&count, "count", 10, "number of orders")
	if err := fs.Parse(args); err != nil {
		return err
	}
	tp, err := p.tradingPair()
	if err != nil {
		return err
	}
	orders, err := a.merchant.Sniffer().AllTheBestOrders(ctx, tp, count)
	if err != nil {
		return err
	}
	return a.print(orders)
}

func (a *App) orders(ctx context.Context, args []string) error {
	tp, err := parsePair("orders", args)
	if err != nil {
		return err
	}
	orders, err := a.merchant.Sniffer().GetMyOrders(ctx, tp)
	if err != nil {
		return err
	}
	return a.print(orders)
}

func (a *App) trade(ctx context.Context, args []string) error {
	order, err := parseOrder("trade", args, nil)
	if err != nil {
		return err
	}
	trade, err := a.trader.CreateOrder(ctx, order)
	if err != nil {
		return err
	}
	a.logger.Info("trade executed",
		zap.String("merchant", a.merchant.Name()),
		zap.String("pair", order.TradingPair.String()),
		zap.String("id", trade.ID))
	return a.print(trade)
}

func (a *App) update(ctx context.Context, args []string) error {
	var id string
	order, err := parseOrder("update", args, &id)
	if err != nil {
		return err
	}
	updated, err := a.trader.UpdateOrder(ctx, id, order)
	if err != nil {
		return err
	}
	return a.print(updated)
}

func (a *App) cancel(ctx context.Context, args []string) error {
	var id string
	fs := newFlagSet("cancel")
	fs.StringVar(&id, "id", "", "venue order id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("missing order id")
	}
	if err := a.trader.DeleteOrder(ctx, id); err != nil {
		return err
	}
	return a.print(map[string]string{"deleted": id})
}

func (a *App) balance(ctx context.Context, args []string) error {
	var first, second string
	fs := newFlagSet("balance")
	fs.StringVar(&first, "coin", "TON", "coin symbol")
	fs.StringVar(&second, "and", "", "second coin symbol")
	if err := fs.Parse(args); err != nil {
		return err
	}

	accountant := a.merchant.Accountant()
	if second == "" {
		c, err := accountant.Ask(ctx, trading.ParseCoin(first))
		if err != nil {
			return err
		}
		return a.print(c)
	}
	c1, c2, err := accountant.AskBoth(ctx, trading.ParseCoin(first), trading.ParseCoin(second))
	if err != nil {
		return err
	}
	return a.print([]trading.Currency{c1, c2})
}

// watch polls the best order of every configured pair until ctx is done.
func (a *App) watch(ctx context.Context, args []string) error {
	var side, target string
	fs := newFlagSet("watch")
	fs.StringVar(&side, "side", "buy", "buy or sell")
	fs.StringVar(&target, "target", "market", "market or limit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ids, err := a.config.TradingPairs()
	if err != nil {
		return err
	}
	interval, err := a.config.RefreshDuration()
	if err != nil {
		return err
	}

	pairs := make([]trading.TradingPair, 0, len(ids))
	for _, id := range ids {
		p := pairFlags{pair: id.String(), side: side, target: target}
		tp, err := p.tradingPair()
		if err != nil {
			return err
		}
		pairs = append(pairs, tp)
	}

	w := watcher.New(a.merchant.Sniffer(), a.merchant.Name(), interval, a.logger)
	quotes, err := w.Subscribe(ctx, pairs)
	if err != nil {
		return err
	}
	for q := range quotes {
		if err := a.print(q); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
