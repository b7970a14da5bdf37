/*
Package tracing gives every request on the listener a trace and span id.

Ids are ULIDs from the shared id package. A caller may pass X-Trace-ID and
X-Span-ID to join an existing trace; the response always carries the ids of
the span that served it. Finished spans go through a buffered collector and
are written to the log at debug level, or at warn level when the handler
recorded an error.

# Usage

	tracer := tracing.New(logger.Component("trace"))
	defer tracer.Close()

	engine.Use(tracing.HTTPMiddleware(tracer))
*/
package tracing
