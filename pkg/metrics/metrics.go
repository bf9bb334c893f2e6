package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "bucket_sampler"
	datasetSubsystem = "dataset"
)

// Dataset related metrics
var (
	ListedObjectsVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: datasetSubsystem,
		Name:      "listed_objects_total",
		Help:      "The number of object keys returned by listings",
	}, []string{"bucket"})

	SampledObjectsVec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: datasetSubsystem,
		Name:      "sampled_objects",
		Help:      "The number of keys selected by the last sample",
	}, []string{"bucket"})

	FetchedObjectsVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: datasetSubsystem,
		Name:      "fetched_objects_total",
		Help:      "The number of objects written to local files",
	}, []string{"bucket"})

	FetchFailuresVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: datasetSubsystem,
		Name:      "fetch_failures_total",
		Help:      "The number of objects that could not be fetched",
	}, []string{"bucket"})

	FetchedBytesVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: datasetSubsystem,
		Name:      "fetched_bytes_total",
		Help:      "The number of bytes written to local files",
	}, []string{"bucket"})

	UploadedObjectsVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: datasetSubsystem,
		Name:      "uploaded_objects_total",
		Help:      "The number of uploaded objects",
	}, []string{"bucket"})
)

// Register registers Prometheus metrics vectors to the registry.
func Register(registry prometheus.Registerer) {
	registry.MustRegister(
		ListedObjectsVec,
		SampledObjectsVec,
		FetchedObjectsVec,
		FetchFailuresVec,
		FetchedBytesVec,
		UploadedObjectsVec,
	)
}

// WriteTextfile writes the gathered metrics in the text exposition format
// so that node_exporter's textfile collector can pick them up.
func WriteTextfile(gatherer prometheus.Gatherer, filename string) error {
	return prometheus.WriteToTextfile(filename, gatherer)
}
