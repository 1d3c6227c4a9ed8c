// Package health reports whether the authentication subsystem can serve.
//
// A Checker reports Healthy, Degraded or Unhealthy. The package provides
// checkers for the signing secret, the decode cache and the asynchronous
// audit sink, an Aggregator that runs checkers concurrently under a
// deadline, and HTTP handlers for liveness, readiness and detailed status.
//
// # Basic Usage
//
//	agg := health.NewAggregator()
//	agg.Register("signing_key", health.NewSigningKeyChecker(codec))
//	agg.Register("decode_cache", health.NewCacheChecker(validator, health.CacheCheckerConfig{}))
//
//	report := agg.Run(ctx)
//	if report.Status == health.StatusUnhealthy {
//	    logger.Error(ctx, "not ready", observe.F("checks", report.Checks))
//	}
package health
