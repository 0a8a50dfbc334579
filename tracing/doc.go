// Package tracing wraps OpenTelemetry so that the orchestrator can open a
// span per run and per execution unit without importing the SDK directly.
// Until Init or InitWithExporter is called the global no-op provider is used
// and spans cost next to nothing.
package tracing
