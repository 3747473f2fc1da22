// SGI FREE SOFTWARE LICENSE B (Version 2.0, Sept. 18, 2008)
// Copyright (C) [dates of first publication] Silicon Graphics, Inc.
// All Rights Reserved.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice including the dates of first publication and either this
// permission notice or a reference to http://oss.sgi.com/projects/FreeB/ shall be
// included in all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED,
// INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A
// PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL SILICON GRAPHICS, INC.
// BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
// TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE
// OR OTHER DEALINGS IN THE SOFTWARE.
//
// Except as contained in this notice, the name of Silicon Graphics, Inc. shall not
// be used in advertising or otherwise to promote the sale, use or other dealings in
// this Software without prior written authorization from Silicon Graphics, Inc.

package wildmesh

import (
	"context"

	"go.opentelemetry.io/otel"
	otelattr "go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/hajimehoshi/go-wildmesh"

func startPassSpan(ctx context.Context, p *Pass, runID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "wildmesh.pass",
		trace.WithAttributes(
			otelattr.String("wildmesh.pass", p.name()),
			otelattr.String("wildmesh.run_id", runID),
			otelattr.String("wildmesh.operation", p.Operation.Name()),
			otelattr.String("wildmesh.policy", p.Policy.String()),
			otelattr.Int("wildmesh.threads", p.Threads),
		))
}

func endPassSpan(span trace.Span, s Stats, err error) {
	span.SetAttributes(
		otelattr.Int64("wildmesh.attempted", s.Attempted),
		otelattr.Int64("wildmesh.applied", s.Applied),
		otelattr.Int64("wildmesh.rejected", s.Rejected),
		otelattr.Int64("wildmesh.stale", s.Stale),
		otelattr.Int64("wildmesh.contended", s.Contended),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func startWorkerSpan(ctx context.Context, worker int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "wildmesh.worker",
		trace.WithAttributes(otelattr.Int("wildmesh.worker", worker)))
}
