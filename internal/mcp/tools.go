package mcp

import (
	"context"
	"fmt"
	"time"

	"candlekit/internal/market"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerMarketTools(server *mcp.Server, market MarketReader) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "market_ticker",
		Description: "Get the live price snapshot for a trading pair, never cached",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in marketTickerInput) (*mcp.CallToolResult, marketTickerOutput, error) {
		if market == nil {
			return nil, marketTickerOutput{}, fmt.Errorf("market data unavailable")
		}
		ticker, err := market.Ticker(ctx, in.Pair)
		if err != nil {
			return nil, marketTickerOutput{}, err
		}
		return nil, marketTickerOutput{Ticker: ticker}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "market_tickers",
		Description: "Get live price snapshots for several trading pairs in one call",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in marketTickersInput) (*mcp.CallToolResult, marketTickersOutput, error) {
		if market == nil {
			return nil, marketTickersOutput{}, fmt.Errorf("market data unavailable")
		}
		entries, err := market.Tickers(ctx, in.Pairs)
		if err != nil {
			return nil, marketTickersOutput{}, err
		}
		return nil, marketTickersOutput{Tickers: entries}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "market_candles",
		Description: "Get OHLCV candles by pair, timeframe, and limit",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in marketCandlesInput) (*mcp.CallToolResult, marketCandlesOutput, error) {
		if market == nil {
			return nil, marketCandlesOutput{}, fmt.Errorf("market data unavailable")
		}
		timeframe, err := normalizeTimeframe(in.Timeframe)
		if err != nil {
			return nil, marketCandlesOutput{}, err
		}
		candles, err := market.OHLCV(ctx, in.Pair, timeframe, in.Limit)
		if err != nil {
			return nil, marketCandlesOutput{}, err
		}
		return nil, marketCandlesOutput{Pair: in.Pair, Timeframe: timeframe, Candles: candles}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "market_orderbook",
		Description: "Get the current order book for a trading pair",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in marketOrderBookInput) (*mcp.CallToolResult, marketOrderBookOutput, error) {
		if market == nil {
			return nil, marketOrderBookOutput{}, fmt.Errorf("market data unavailable")
		}
		book, err := market.OrderBook(ctx, in.Pair, in.Depth)
		if err != nil {
			return nil, marketOrderBookOutput{}, err
		}
		return nil, marketOrderBookOutput{Book: book}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "market_trades",
		Description: "Get recent public trades for a trading pair",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in marketTradesInput) (*mcp.CallToolResult, marketTradesOutput, error) {
		if market == nil {
			return nil, marketTradesOutput{}, fmt.Errorf("market data unavailable")
		}
		trades, err := market.RecentTrades(ctx, in.Pair, in.Limit)
		if err != nil {
			return nil, marketTradesOutput{}, err
		}
		return nil, marketTradesOutput{Pair: in.Pair, Trades: trades}, nil
	})
}

func registerSessionTools(server *mcp.Server, now func() time.Time) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "market_killzones",
		Description: "Session killzone windows for a date with the active and next window",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in marketKillzonesInput) (*mcp.CallToolResult, marketKillzonesOutput, error) {
		report, err := market.Killzones(now(), market.KillzoneQuery{
			Date:          in.Date,
			Profile:       in.Profile,
			ReferenceZone: in.ReferenceTimezone,
			DisplayZone:   in.Timezone,
		})
		if err != nil {
			return nil, marketKillzonesOutput{}, err
		}
		return nil, marketKillzonesOutput{Report: report}, nil
	})
}

func registerAnalysisTools(server *mcp.Server, analysis Analyzer) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ta_sma",
		Description: "Simple moving averages of the closes with deviation from last price",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in taMovingAverageInput) (*mcp.CallToolResult, taSMAOutput, error) {
		if analysis == nil {
			return nil, taSMAOutput{}, fmt.Errorf("analysis unavailable")
		}
		timeframe, err := normalizeTimeframe(in.Timeframe)
		if err != nil {
			return nil, taSMAOutput{}, err
		}
		result, err := analysis.SMA(ctx, in.Pair, timeframe, in.Periods)
		if err != nil {
			return nil, taSMAOutput{}, err
		}
		return nil, taSMAOutput{Pair: in.Pair, Timeframe: timeframe, Result: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ta_ema",
		Description: "Exponential moving averages with trend alignment of the last close",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in taMovingAverageInput) (*mcp.CallToolResult, taEMAOutput, error) {
		if analysis == nil {
			return nil, taEMAOutput{}, fmt.Errorf("analysis unavailable")
		}
		timeframe, err := normalizeTimeframe(in.Timeframe)
		if err != nil {
			return nil, taEMAOutput{}, err
		}
		result, err := analysis.EMA(ctx, in.Pair, timeframe, in.Periods)
		if err != nil {
			return nil, taEMAOutput{}, err
		}
		return nil, taEMAOutput{Pair: in.Pair, Timeframe: timeframe, Result: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ta_rsi",
		Description: "Wilder RSI with overbought/oversold zone",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in taRSIInput) (*mcp.CallToolResult, taRSIOutput, error) {
		if analysis == nil {
			return nil, taRSIOutput{}, fmt.Errorf("analysis unavailable")
		}
		timeframe, err := normalizeTimeframe(in.Timeframe)
		if err != nil {
			return nil, taRSIOutput{}, err
		}
		result, err := analysis.RSI(ctx, in.Pair, timeframe, in.Period)
		if err != nil {
			return nil, taRSIOutput{}, err
		}
		return nil, taRSIOutput{Pair: in.Pair, Timeframe: timeframe, Result: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ta_macd",
		Description: "MACD line, signal line, histogram, and momentum reversal flag",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in taMACDInput) (*mcp.CallToolResult, taMACDOutput, error) {
		if analysis == nil {
			return nil, taMACDOutput{}, fmt.Errorf("analysis unavailable")
		}
		timeframe, err := normalizeTimeframe(in.Timeframe)
		if err != nil {
			return nil, taMACDOutput{}, err
		}
		result, err := analysis.MACD(ctx, in.Pair, timeframe, in.Fast, in.Slow, in.Signal)
		if err != nil {
			return nil, taMACDOutput{}, err
		}
		return nil, taMACDOutput{Pair: in.Pair, Timeframe: timeframe, Result: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ta_pivots",
		Description: "Pivot point levels from the prior completed bar",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in taPivotsInput) (*mcp.CallToolResult, taPivotsOutput, error) {
		if analysis == nil {
			return nil, taPivotsOutput{}, fmt.Errorf("analysis unavailable")
		}
		timeframe, err := normalizeTimeframe(in.Timeframe)
		if err != nil {
			return nil, taPivotsOutput{}, err
		}
		typ, err := normalizePivotType(in.Type)
		if err != nil {
			return nil, taPivotsOutput{}, err
		}
		result, err := analysis.Pivots(ctx, in.Pair, timeframe, typ)
		if err != nil {
			return nil, taPivotsOutput{}, err
		}
		return nil, taPivotsOutput{Pair: in.Pair, Timeframe: timeframe, Result: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ta_support_resistance",
		Description: "Support and resistance zones from clustered local extrema",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in taSupportResistanceInput) (*mcp.CallToolResult, taSupportResistanceOutput, error) {
		if analysis == nil {
			return nil, taSupportResistanceOutput{}, fmt.Errorf("analysis unavailable")
		}
		timeframe, err := normalizeTimeframe(in.Timeframe)
		if err != nil {
			return nil, taSupportResistanceOutput{}, err
		}
		bars := normalizeBars(in.Bars, defaultSRBars)
		result, err := analysis.SupportResistance(ctx, in.Pair, timeframe, bars, in.Window, in.Tolerance)
		if err != nil {
			return nil, taSupportResistanceOutput{}, err
		}
		return nil, taSupportResistanceOutput{Pair: in.Pair, Timeframe: timeframe, Result: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ta_volume_profile",
		Description: "Volume-by-price profile with point of control and value area",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in taVolumeProfileInput) (*mcp.CallToolResult, taVolumeProfileOutput, error) {
		if analysis == nil {
			return nil, taVolumeProfileOutput{}, fmt.Errorf("analysis unavailable")
		}
		timeframe, err := normalizeTimeframe(in.Timeframe)
		if err != nil {
			return nil, taVolumeProfileOutput{}, err
		}
		bars := normalizeBars(in.Bars, defaultProfileBars)
		result, err := analysis.VolumeProfile(ctx, in.Pair, timeframe, bars, in.NumLevels)
		if err != nil {
			return nil, taVolumeProfileOutput{}, err
		}
		return nil, taVolumeProfileOutput{Pair: in.Pair, Timeframe: timeframe, Result: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ta_order_flow",
		Description: "Buy/sell volume delta over recent trades",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in taOrderFlowInput) (*mcp.CallToolResult, taOrderFlowOutput, error) {
		if analysis == nil {
			return nil, taOrderFlowOutput{}, fmt.Errorf("analysis unavailable")
		}
		result, err := analysis.OrderFlow(ctx, in.Pair, in.Limit)
		if err != nil {
			return nil, taOrderFlowOutput{}, err
		}
		return nil, taOrderFlowOutput{Pair: in.Pair, Result: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ta_forecast",
		Description: "Linear regression price extrapolation, a directional heuristic only",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in taForecastInput) (*mcp.CallToolResult, taForecastOutput, error) {
		if analysis == nil {
			return nil, taForecastOutput{}, fmt.Errorf("analysis unavailable")
		}
		timeframe, err := normalizeTimeframe(in.Timeframe)
		if err != nil {
			return nil, taForecastOutput{}, err
		}
		result, err := analysis.Forecast(ctx, in.Pair, timeframe, in.TrainLen, in.ForecastLen)
		if err != nil {
			return nil, taForecastOutput{}, err
		}
		return nil, taForecastOutput{Pair: in.Pair, Timeframe: timeframe, Result: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ta_summary",
		Description: "Composite bullish/bearish/neutral score across the standard indicators",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in taSummaryInput) (*mcp.CallToolResult, taSummaryOutput, error) {
		if analysis == nil {
			return nil, taSummaryOutput{}, fmt.Errorf("analysis unavailable")
		}
		timeframe, err := normalizeTimeframe(in.Timeframe)
		if err != nil {
			return nil, taSummaryOutput{}, err
		}
		result, err := analysis.Summary(ctx, in.Pair, timeframe)
		if err != nil {
			return nil, taSummaryOutput{}, err
		}
		return nil, taSummaryOutput{Pair: in.Pair, Timeframe: timeframe, Result: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "portfolio_value",
		Description: "Value a spot holdings map at fresh market prices",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in portfolioValueInput) (*mcp.CallToolResult, portfolioValueOutput, error) {
		if analysis == nil {
			return nil, portfolioValueOutput{}, fmt.Errorf("analysis unavailable")
		}
		valuation, err := analysis.PortfolioValue(ctx, in.Holdings, in.Quote)
		if err != nil {
			return nil, portfolioValueOutput{}, err
		}
		return nil, portfolioValueOutput{Valuation: valuation}, nil
	})
}

func registerAlertTools(server *mcp.Server, alerts AlertManager) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "alerts_set",
		Description: "Register a price alert for a trading pair",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in alertsSetInput) (*mcp.CallToolResult, alertsSetOutput, error) {
		if alerts == nil {
			return nil, alertsSetOutput{}, fmt.Errorf("alerts unavailable")
		}
		condition, err := normalizeCondition(in.Condition)
		if err != nil {
			return nil, alertsSetOutput{}, err
		}
		created, err := alerts.Set(ctx, in.Pair, condition, in.Threshold, in.Message)
		if err != nil {
			return nil, alertsSetOutput{}, err
		}
		return nil, alertsSetOutput{Alert: created}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "alerts_list",
		Description: "List registered price alerts, optionally filtered by pair",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in alertsListInput) (*mcp.CallToolResult, alertsListOutput, error) {
		if alerts == nil {
			return nil, alertsListOutput{}, fmt.Errorf("alerts unavailable")
		}
		list, err := alerts.List(ctx, in.Pair)
		if err != nil {
			return nil, alertsListOutput{}, err
		}
		return nil, alertsListOutput{Alerts: list}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "alerts_remove",
		Description: "Remove a price alert by id",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in alertsRemoveInput) (*mcp.CallToolResult, alertsRemoveOutput, error) {
		if alerts == nil {
			return nil, alertsRemoveOutput{}, fmt.Errorf("alerts unavailable")
		}
		removed, err := alerts.Remove(ctx, in.ID)
		if err != nil {
			return nil, alertsRemoveOutput{}, err
		}
		return nil, alertsRemoveOutput{Removed: removed}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "alerts_check",
		Description: "Evaluate registered alerts against fresh prices and report which fired",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in alertsCheckInput) (*mcp.CallToolResult, alertsCheckOutput, error) {
		if alerts == nil {
			return nil, alertsCheckOutput{}, fmt.Errorf("alerts unavailable")
		}
		report, err := alerts.Check(ctx, in.Pair)
		if err != nil {
			return nil, alertsCheckOutput{}, err
		}
		return nil, alertsCheckOutput{Report: report}, nil
	})
}
