// Package risk computes excess cancer risk from organ doses using the BEIR V
// and BEIR VII epidemiological models.
//
// Model selection is per organ and deterministic: doses below 0.1 Sv use the
// low-dose BEIR VII model, doses at or above it use BEIR V, and doses above
// 4 Sv are outside both models' domain and are flagged and skipped. Two
// organs in the same document may therefore use different models.
//
// The formulas are transcribed from the published reports, not restated:
//
//   - BEIR VII solid cancers: ERR = beta * D * exp(gamma*e*) * (a/60)^eta,
//     divided by the DDREF; e* = (e-30)/10 for exposure age e below 30,
//     else 0
//   - BEIR VII leukemia: linear-quadratic in dose with a log-time term,
//     no DDREF
//   - BEIR V: piecewise per-organ models (leukemia time windows, breast age
//     brackets, thyroid child/adult threshold, linear otherwise), boundary
//     bands inclusive on their upper edge as documented by the 1990 report
//
// Outputs are biological risk estimates, never negative: a formula that
// evaluates below zero is clamped to zero and a diagnostic recorded.
// LAR contributions are ERR scaled by the sex-specific baseline incidence.
package risk
