package metrics

import (
	"context"
	"fmt"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export following OTel standards
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	registry      *promclient.Registry
	reporter      Reporter

	// OTel meters and instruments
	meter              metric.Meter
	attemptsCounter    metric.Int64ObservableCounter
	retriesCounter     metric.Int64ObservableCounter
	exhaustedCounter   metric.Int64ObservableCounter
	disabledCounter    metric.Int64ObservableCounter
	endpointCounter    metric.Int64ObservableCounter
	responseTimeGauge  metric.Float64ObservableGauge
	queueDepthGauge    metric.Int64ObservableGauge
	activeWorkersGauge metric.Int64ObservableGauge
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format
func NewOTelExporter(reporter Reporter) (*OTelExporter, error) {
	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		"webhook-dispatch",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		registry:      registry,
		reporter:      reporter,
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates the instruments and one callback observing all of them
func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.attemptsCounter, err = oe.meter.Int64ObservableCounter(
		"webhook.delivery.attempts",
		metric.WithDescription("Delivery attempts by outcome"),
		metric.WithUnit("{attempts}"),
	)
	if err != nil {
		return fmt.Errorf("creating attempts counter: %w", err)
	}

	oe.retriesCounter, err = oe.meter.Int64ObservableCounter(
		"webhook.delivery.retries",
		metric.WithDescription("Failed attempts that scheduled another attempt"),
		metric.WithUnit("{attempts}"),
	)
	if err != nil {
		return fmt.Errorf("creating retries counter: %w", err)
	}

	oe.exhaustedCounter, err = oe.meter.Int64ObservableCounter(
		"webhook.delivery.exhausted",
		metric.WithDescription("Deliveries that failed terminally"),
		metric.WithUnit("{deliveries}"),
	)
	if err != nil {
		return fmt.Errorf("creating exhausted counter: %w", err)
	}

	oe.disabledCounter, err = oe.meter.Int64ObservableCounter(
		"webhook.subscriptions.disabled",
		metric.WithDescription("Subscriptions disabled by the failure policy"),
		metric.WithUnit("{subscriptions}"),
	)
	if err != nil {
		return fmt.Errorf("creating disabled counter: %w", err)
	}

	oe.endpointCounter, err = oe.meter.Int64ObservableCounter(
		"webhook.endpoint.attempts",
		metric.WithDescription("Delivery attempts per endpoint URL by outcome"),
		metric.WithUnit("{attempts}"),
	)
	if err != nil {
		return fmt.Errorf("creating endpoint counter: %w", err)
	}

	oe.responseTimeGauge, err = oe.meter.Float64ObservableGauge(
		"webhook.delivery.response_time",
		metric.WithDescription("Mean response time over all attempts"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return fmt.Errorf("creating response time gauge: %w", err)
	}

	oe.queueDepthGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.queue.depth",
		metric.WithDescription("Number of jobs in the delivery queue by state"),
		metric.WithUnit("{jobs}"),
	)
	if err != nil {
		return fmt.Errorf("creating queue depth gauge: %w", err)
	}

	oe.activeWorkersGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.workers.active",
		metric.WithDescription("Number of active workers per pool"),
		metric.WithUnit("{workers}"),
	)
	if err != nil {
		return fmt.Errorf("creating active workers gauge: %w", err)
	}

	_, err = oe.meter.RegisterCallback(oe.observe,
		oe.attemptsCounter,
		oe.retriesCounter,
		oe.exhaustedCounter,
		oe.disabledCounter,
		oe.endpointCounter,
		oe.responseTimeGauge,
		oe.queueDepthGauge,
		oe.activeWorkersGauge,
	)
	if err != nil {
		return fmt.Errorf("registering callback: %w", err)
	}

	return nil
}

// observe collects once per scrape and reports every instrument
func (oe *OTelExporter) observe(ctx context.Context, o metric.Observer) error {
	stats, err := oe.reporter.Collect(ctx)
	if err != nil {
		return err
	}

	d := stats.Deliveries
	o.ObserveInt64(oe.attemptsCounter, d.Delivered, metric.WithAttributes(attribute.String("outcome", "success")))
	o.ObserveInt64(oe.attemptsCounter, d.Failed, metric.WithAttributes(attribute.String("outcome", "failure")))
	o.ObserveInt64(oe.retriesCounter, d.Retries)
	o.ObserveInt64(oe.exhaustedCounter, d.Exhausted)
	o.ObserveInt64(oe.disabledCounter, d.Disabled)
	o.ObserveFloat64(oe.responseTimeGauge, d.AverageResponseTimeMS)

	for url, e := range d.Endpoints {
		o.ObserveInt64(oe.endpointCounter, e.Delivered, metric.WithAttributes(
			attribute.String("endpoint.url", url),
			attribute.String("outcome", "success"),
		))
		o.ObserveInt64(oe.endpointCounter, e.Failed, metric.WithAttributes(
			attribute.String("endpoint.url", url),
			attribute.String("outcome", "failure"),
		))
	}

	if q := stats.Queue; q != nil {
		o.ObserveInt64(oe.queueDepthGauge, q.Ready, metric.WithAttributes(attribute.String("queue.state", "ready")))
		o.ObserveInt64(oe.queueDepthGauge, q.Delayed, metric.WithAttributes(attribute.String("queue.state", "delayed")))
		o.ObserveInt64(oe.queueDepthGauge, q.InFlight, metric.WithAttributes(attribute.String("queue.state", "in_flight")))
	}

	for pool, workers := range stats.Workers {
		o.ObserveInt64(oe.activeWorkersGauge, int64(len(workers)), metric.WithAttributes(
			attribute.String("pool", pool),
		))
	}

	return nil
}

// Handler serves the Prometheus exposition of this exporter's registry
func (oe *OTelExporter) Handler() http.Handler {
	return promhttp.HandlerFor(oe.registry, promhttp.HandlerOpts{})
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
