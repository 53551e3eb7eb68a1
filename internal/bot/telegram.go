package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"candlekit/internal/domain"
	"candlekit/internal/ta"

	tele "gopkg.in/telebot.v3"
)

type PriceQuerier interface {
	Ticker(ctx context.Context, pair string) (*domain.Ticker, error)
}

type Summarizer interface {
	Summary(ctx context.Context, pair, timeframe string) (*ta.SummaryResult, error)
}

type AlertWriter interface {
	Set(ctx context.Context, pair string, condition domain.AlertCondition, threshold float64, message string) (domain.Alert, error)
	List(ctx context.Context, pair string) ([]domain.Alert, error)
	Remove(ctx context.Context, id string) (domain.Alert, error)
}

func StartTelegramBot(token string, prices PriceQuerier, analysis Summarizer, alerts AlertWriter) *AlertDispatcher {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	dispatcher := NewAlertDispatcher(b)

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/price", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /price BTC/USDT")
		}
		ticker, err := prices.Ticker(context.Background(), args[0])
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching price for %s: %v", args[0], err))
		}
		msg := fmt.Sprintf(
			"%s\nLast: %g\n24h Change: %.2f%%\n24h Volume: %.0f",
			ticker.Pair, ticker.Last, ticker.ChangePct24h, ticker.QuoteVolume,
		)
		return c.Send(msg)
	})

	b.Handle("/summary", func(c tele.Context) error {
		if analysis == nil {
			return c.Send("Analysis unavailable")
		}
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /summary BTC/USDT [timeframe]")
		}
		timeframe := "1h"
		if len(args) > 1 {
			timeframe = args[1]
		}
		result, err := analysis.Summary(context.Background(), args[0], timeframe)
		if err != nil {
			return c.Send(fmt.Sprintf("Error computing summary: %v", err))
		}
		return c.Send(formatSummary(args[0], timeframe, result))
	})

	b.Handle("/alert", func(c tele.Context) error {
		if alerts == nil {
			return c.Send("Alerts unavailable")
		}
		args := c.Args()
		if len(args) < 3 {
			return c.Send("Usage: /alert BTC/USDT crosses_above 50000")
		}
		threshold, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return c.Send("Threshold must be a number")
		}
		created, err := alerts.Set(context.Background(), args[0], domain.AlertCondition(strings.ToLower(args[1])), threshold, "")
		if err != nil {
			return c.Send(fmt.Sprintf("Error setting alert: %v", err))
		}
		return c.Send(fmt.Sprintf("Alert %s set: %s", created.ID, created.Message))
	})

	b.Handle("/alertlist", func(c tele.Context) error {
		if alerts == nil {
			return c.Send("Alerts unavailable")
		}
		pair := ""
		if args := c.Args(); len(args) > 0 {
			pair = args[0]
		}
		list, err := alerts.List(context.Background(), pair)
		if err != nil {
			return c.Send(fmt.Sprintf("Error listing alerts: %v", err))
		}
		if len(list) == 0 {
			return c.Send("No alerts registered.")
		}
		lines := make([]string, 0, len(list))
		for _, a := range list {
			lines = append(lines, formatAlertStatus(a))
		}
		return c.Send(strings.Join(lines, "\n"))
	})

	b.Handle("/alertremove", func(c tele.Context) error {
		if alerts == nil {
			return c.Send("Alerts unavailable")
		}
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /alertremove <id>")
		}
		removed, err := alerts.Remove(context.Background(), args[0])
		if err != nil {
			return c.Send(fmt.Sprintf("Error removing alert: %v", err))
		}
		return c.Send(fmt.Sprintf("Alert %s removed.", removed.ID))
	})

	b.Handle("/alerts", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}

		mode, err := parseAlertMode(c.Args())
		if err != nil {
			return c.Send("Usage: /alerts on | /alerts off | /alerts status")
		}

		switch mode {
		case "on":
			if dispatcher.Subscribe(chat.ID) {
				return c.Send("Alert notifications enabled for this chat.")
			}
			return c.Send("Alert notifications are already enabled for this chat.")
		case "off":
			if dispatcher.Unsubscribe(chat.ID) {
				return c.Send("Alert notifications disabled for this chat.")
			}
			return c.Send("Alert notifications are already disabled for this chat.")
		default:
			if dispatcher.IsSubscribed(chat.ID) {
				return c.Send("Notifications status: ON")
			}
			return c.Send("Notifications status: OFF")
		}
	})

	log.Println("Telegram bot started")
	go b.Start()
	return dispatcher
}

func parseAlertMode(args []string) (string, error) {
	if len(args) == 0 {
		return "status", nil
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "on":
		return "on", nil
	case "off":
		return "off", nil
	case "status":
		return "status", nil
	default:
		return "", fmt.Errorf("invalid mode")
	}
}

func formatSummary(pair, timeframe string, result *ta.SummaryResult) string {
	lines := []string{
		fmt.Sprintf("%s %s: %s (score %.2f)", strings.ToUpper(pair), timeframe, strings.ToUpper(string(result.Label)), result.Score),
	}
	for _, contrib := range result.Contributors {
		lines = append(lines, fmt.Sprintf("  %s: %+d", contrib.Name, contrib.Vote))
	}
	if len(result.Excluded) > 0 {
		lines = append(lines, "  excluded: "+strings.Join(result.Excluded, ", "))
	}
	return strings.Join(lines, "\n")
}

func formatAlertStatus(a domain.Alert) string {
	state := "active"
	if a.Fired() {
		state = "fired"
	}
	return fmt.Sprintf("%s %s %s %g [%s]", a.ID, a.Pair, a.Condition, a.Threshold, state)
}
