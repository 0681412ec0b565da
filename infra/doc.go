// Package infra holds the adapters behind the core interfaces: logging
// backends, metrics sinks, Sentry monitoring and the MQTT set-point
// publisher. These packages depend on core, never the other way round.
package infra
