package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WardBedCount is one (ward, bed status) cell of the occupancy board.
type WardBedCount struct {
	WardCode string
	Status   string
	Count    int
}

// BedCollector derives the bed gauge at scrape time instead of keeping
// a counter in step with every claim and release.
type BedCollector struct {
	snapshot func(ctx context.Context) ([]WardBedCount, error)
	desc     *prometheus.Desc
}

func NewBedCollector(snapshot func(ctx context.Context) ([]WardBedCount, error)) *BedCollector {
	return &BedCollector{
		snapshot: snapshot,
		desc: prometheus.NewDesc(
			"hims_ward_beds",
			"Number of beds per ward by status.",
			[]string{"ward", "status"}, nil,
		),
	}
}

func (c *BedCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *BedCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts, err := c.snapshot(ctx)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.desc, err)
		return
	}
	for _, wc := range counts {
		ch <- prometheus.MustNewConstMetric(
			c.desc, prometheus.GaugeValue, float64(wc.Count), wc.WardCode, wc.Status,
		)
	}
}
