// Package config loads agentguard configuration.
//
// Configuration comes from three layers, later layers winning:
//
//  1. Defaults (see Default)
//  2. A YAML file
//  3. AGENTGUARD_* environment variables, optionally seeded from a .env file
//
// The result is validated with struct tags and then cross-checked against
// the role and permission vocabulary, the cache eviction names and the
// telemetry exporter names.
//
// # Example
//
//	secret:
//	  refs: ["secretref:env:AGENT_JWT_SECRET", "secretref:properties:agent.jwt.secret"]
//	  properties_file: /etc/agentguard/app.yaml
//	cache:
//	  max_entries: 1000
//	  eviction: lru
//	  ttl: 10m
//	authz:
//	  allow_anonymous: false
//	  resources:
//	    /v1/agents/*:
//	      roles: [DEVELOPER, ADMIN]
//	      permissions: [AGENT_READ]
package config
