// Package adapter contains the TimeSource implementations: the host system
// clock, clock_gettime, Redis TIME and a remote timegate over gRPC.
//
// Every adapter reads in two stages. A failed read, or a reading before the
// epoch, is reported as domain.ErrGateway; a reading the TimestampBuilder
// rejects is reported as domain.ErrProcessing. Adapters never retry.
package adapter

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("timegate/adapter")
