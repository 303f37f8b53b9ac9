package app

import (
    "github.com/prometheus/client_golang/prometheus"
)

// Metrics are the service's Prometheus collectors.
type Metrics struct {
    registry *prometheus.Registry

    gamesCreated prometheus.Counter
    gamesActive  prometheus.Gauge
    subscribers  prometheus.Gauge
    dropped      prometheus.Counter
    commands     *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg, or on a private registry when reg is nil.
func NewMetrics(reg *prometheus.Registry) *Metrics {
    if reg == nil {
        reg = prometheus.NewRegistry()
    }
    m := &Metrics{
        registry: reg,
        gamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
            Namespace: "tictactoe",
            Name:      "games_created_total",
            Help:      "Games started since process start.",
        }),
        gamesActive: prometheus.NewGauge(prometheus.GaugeOpts{
            Namespace: "tictactoe",
            Name:      "games_active",
            Help:      "Games currently hosted.",
        }),
        subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
            Namespace: "tictactoe",
            Name:      "subscribers",
            Help:      "Open update subscriptions.",
        }),
        dropped: prometheus.NewCounter(prometheus.CounterOpts{
            Namespace: "tictactoe",
            Name:      "subscribers_dropped_total",
            Help:      "Subscribers dropped for not keeping up.",
        }),
        commands: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: "tictactoe",
            Name:      "commands_total",
            Help:      "Commands applied to games, by command.",
        }, []string{"command"}),
    }
    reg.MustRegister(m.gamesCreated, m.gamesActive, m.subscribers, m.dropped, m.commands)
    return m
}

// Gatherer exposes the registry for an HTTP handler.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }
