// Package secret resolves signing secrets from process configuration.
//
// It supports:
//   - Strict environment expansion of references (see ExpandEnvStrict); resolved
//     secret values are never expanded
//   - Pluggable secret providers (see Provider + Registry)
//   - A process-level property store loaded from YAML or .env files (see Properties)
//   - Ordered fallback across references (see Resolver.ResolveFirst)
//
// References use the prefix "secretref:":
//   - Environment:  secretref:env:AGENT_JWT_SECRET
//   - Property:     secretref:properties:agent.jwt.secret
//
// Resolution is never cached: every call reads the providers again, so a
// changed environment or property is observed on the next lookup.
package secret
