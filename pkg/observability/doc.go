/*
Package observability turns runtime lifecycle hooks into logs and
Prometheus metrics.

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))
	rt, _ := teamwork.New(teamwork.WithHooks(hooks))
*/
package observability
