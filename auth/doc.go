// Package auth authenticates and authorizes agent requests.
//
// A SecurityContext carries a signed token and the identity claims it
// resolves to. The Validator decodes tokens through a bounded cache, checks
// that every claim is present, and evaluates a Resource's required roles and
// permissions with OR semantics: any one matching role or permission grants
// access. The Gate runs the full admission sequence for a request and
// records each decision to an audit.Sink.
//
// Boolean methods on Validator fail closed and never panic. The error-
// returning methods expose the cause for logging and auditing.
package auth
