// Package telemetry provides OpenTelemetry integration for benchkit.
package telemetry

import (
	"os"
	"strings"
)

// Config holds OpenTelemetry configuration loaded from environment variables.
type Config struct {
	// Enabled indicates whether tracing is enabled (OTEL_ENABLED).
	Enabled bool

	// ServiceName is the reported service name (OTEL_SERVICE_NAME,
	// defaults to "benchkit").
	ServiceName string

	// ServiceVersion is the reported service version (OTEL_SERVICE_VERSION).
	ServiceVersion string

	// Endpoint is the OTLP collector endpoint (OTEL_EXPORTER_OTLP_ENDPOINT).
	Endpoint string

	// Protocol is "grpc" or "http/protobuf" (OTEL_EXPORTER_OTLP_PROTOCOL,
	// defaults to "grpc").
	Protocol string

	// Headers carries exporter headers such as Authorization
	// (OTEL_EXPORTER_OTLP_HEADERS, "k1=v1,k2=v2").
	Headers map[string]string

	// Insecure disables transport security (OTEL_EXPORTER_OTLP_INSECURE).
	Insecure bool

	// Sampler selects the trace sampler (OTEL_TRACES_SAMPLER); the
	// default is always_on.
	Sampler string

	// SamplerArg is the sampler argument, e.g. a ratio
	// (OTEL_TRACES_SAMPLER_ARG).
	SamplerArg string

	// ResourceAttrs carries extra resource attributes
	// (OTEL_RESOURCE_ATTRIBUTES, "k1=v1,k2=v2").
	ResourceAttrs map[string]string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	return &Config{
		Enabled:        strings.ToLower(os.Getenv("OTEL_ENABLED")) == "true",
		ServiceName:    getEnvOrDefault("OTEL_SERVICE_NAME", "benchkit"),
		ServiceVersion: getEnvOrDefault("OTEL_SERVICE_VERSION", "unknown"),
		Endpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Protocol:       getEnvOrDefault("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
		Headers:        parseKeyValuePairs(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
		Insecure:       strings.ToLower(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")) == "true",
		Sampler:        os.Getenv("OTEL_TRACES_SAMPLER"),
		SamplerArg:     os.Getenv("OTEL_TRACES_SAMPLER_ARG"),
		ResourceAttrs:  parseKeyValuePairs(os.Getenv("OTEL_RESOURCE_ATTRIBUTES")),
	}
}

// getEnvOrDefault returns the environment variable value or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseKeyValuePairs parses a comma-separated list of key=value pairs.
func parseKeyValuePairs(s string) map[string]string {
	result := make(map[string]string)
	if s == "" {
		return result
	}

	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		// Split on first '=' only to allow '=' in values
		idx := strings.Index(pair, "=")
		if idx <= 0 {
			continue
		}

		key := strings.TrimSpace(pair[:idx])
		value := strings.TrimSpace(pair[idx+1:])
		if key != "" {
			result[key] = value
		}
	}

	return result
}
