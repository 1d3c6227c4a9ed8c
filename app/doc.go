// Package app assembles agentguard from a config.Config.
//
// New builds, in dependency order: the secret property store and resolver,
// the token codec, telemetry, the validator with its decode cache, the
// audit sinks, the admission gate, the resource table and the health
// aggregator. Close drains pending audit entries and flushes telemetry.
//
//	a, err := app.New(ctx, *cfg)
//	if err != nil {
//	    return err
//	}
//	defer a.Close(context.Background())
//
//	d := a.Gate().Check(ctx, req, a.Resources().Lookup(req.Resource))
package app
