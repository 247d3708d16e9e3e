// Package recommend implements the personalized recommendation engine:
// purchase history analysis, multi-factor catalog scoring, candidate
// selection, and oracle-backed finalization with a deterministic fallback.
//
// Everything here is computed synchronously per request with no shared
// mutable state; derived profiles and scores are rebuilt from scratch each
// call, so the engine is safe to reuse as a stateless service. The only
// blocking operation is the ranking oracle call, which degrades to the
// deterministic candidate ranking on any failure.
package recommend
