package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "opensms_http_requests_total", Help: "Inbound HTTP requests"},
		[]string{"endpoint", "status"},
	)
	AdapterAdmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "opensms_adapter_admitted_total", Help: "Requests admitted per adapter"},
		[]string{"adapter"},
	)
	MessagesParsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "opensms_messages_parsed_total", Help: "Adapter parse outcomes"},
		[]string{"adapter", "result"},
	)
	ModifierErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "opensms_modifier_errors_total", Help: "Modifier chain aborts"},
		[]string{"modifier"},
	)
	ListenerResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "opensms_listener_results_total", Help: "Listener notification outcomes"},
		[]string{"listener", "result"},
	)
	MediaFetch = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "opensms_media_fetch_total", Help: "MMS media fetch outcomes"},
		[]string{"result"},
	)
	MediaFetchLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "opensms_media_fetch_latency_seconds", Help: "MMS media fetch latency"},
	)
	SwitchEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "opensms_switch_events_total", Help: "Event socket delivery outcomes"},
		[]string{"result"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequests, AdapterAdmitted, MessagesParsed, ModifierErrors,
		ListenerResults, MediaFetch, MediaFetchLatency, SwitchEvents)
}
