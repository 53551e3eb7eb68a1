package job

import (
	"context"
	"log"
	"time"

	"candlekit/internal/alert"

	"go.opentelemetry.io/otel/trace"
)

const defaultPollInterval = 30 * time.Second

type AlertChecker interface {
	Check(ctx context.Context, pair string) (*alert.CheckReport, error)
}

// AlertPoller periodically evaluates registered price alerts and pushes fired
// ones to the notifier.
type AlertPoller struct {
	tracer   trace.Tracer
	alerts   AlertChecker
	notify   func(ctx context.Context, report *alert.CheckReport)
	interval time.Duration
}

func NewAlertPoller(tracer trace.Tracer, alerts AlertChecker, interval time.Duration, notify func(ctx context.Context, report *alert.CheckReport)) *AlertPoller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &AlertPoller{
		tracer:   tracer,
		alerts:   alerts,
		notify:   notify,
		interval: interval,
	}
}

// Start blocks until ctx is cancelled, checking all alerts every interval.
func (p *AlertPoller) Start(ctx context.Context) {
	if p.alerts == nil {
		log.Println("Alert poller disabled: no alert service")
		<-ctx.Done()
		return
	}

	log.Printf("Alert poller starting, interval %s", p.interval)
	p.checkOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Alert poller stopped")
			return
		case <-ticker.C:
			p.checkOnce(ctx)
		}
	}
}

func (p *AlertPoller) checkOnce(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "alert-poller.check")
	defer span.End()

	report, err := p.alerts.Check(ctx, "")
	if err != nil {
		log.Printf("alert check error: %v", err)
		return
	}
	for _, checkErr := range report.Errors {
		log.Printf("alert price fetch error for %s: %s", checkErr.Pair, checkErr.Error)
	}
	if len(report.Fired) > 0 {
		log.Printf("%d alert(s) fired", len(report.Fired))
		if p.notify != nil {
			p.notify(ctx, report)
		}
	}
}
