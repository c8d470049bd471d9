package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/journalmap/internal/storage/fsio"
)

// FileCollector reports the on-disk size of a snapshot and journal pair at
// collection time. A missing file reports 0.
type FileCollector struct {
	snapshotPath string
	journalPath  string

	size *prometheus.Desc
}

// NewFileCollector returns a collector for the given files.
func NewFileCollector(snapshotPath, journalPath string) *FileCollector {
	return &FileCollector{
		snapshotPath: snapshotPath,
		journalPath:  journalPath,
		size: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", "file_size_bytes"),
			"Size of the snapshot and journal files",
			[]string{"file"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *FileCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.size
}

// Collect implements prometheus.Collector.
func (c *FileCollector) Collect(ch chan<- prometheus.Metric) {
	for _, f := range []struct{ label, path string }{
		{"snapshot", c.snapshotPath},
		{"journal", c.journalPath},
	} {
		size, _, err := fsio.Size(f.path)
		if err != nil {
			ch <- prometheus.NewInvalidMetric(c.size, err)
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(size), f.label)
	}
}
