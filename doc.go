// Package sqkernel implements the per-candidate scoring core of an
// HNSW-style approximate nearest-neighbor search over scalar-quantized
// vectors: a metric-specialized quantized scorer and a generation-stamped
// visited-flags tracker, plus the host-side pipeline that validates and
// dispatches them.
//
// # Quick Start
//
//	q, _ := quantization.NewSQ8(128, kernel.MetricDot)
//	_ = q.Train(sample)
//
//	store, _ := vectorstore.NewMemoryStore(q.PaddedDim())
//	for _, v := range vectors {
//	    codes, off, _ := q.Encode(v)
//	    store.Add(codes, off)
//	}
//
//	pipe, _ := sqkernel.NewBuilder().
//	    Quantizer(q).
//	    Store(store).
//	    VisitedCapacity(uint32(store.Len())).
//	    Groups(4).
//	    Build()
//
//	pass, _ := pipe.NewPass(query, 1)
//	results, _ := pass.Dispatch(ctx, candidates)
//
// # Design
//
// The kernel layer (kernel, visited, internal/simd) is contract-only: no
// bounds checks, no error returns, no synchronization. All validation lives
// in the pipeline builder's preflight, which refuses to build or dispatch on
// violation. The visited buffer is never cleared between passes; advancing
// the pass generation invalidates prior marks implicitly.
package sqkernel
