// Package payment splits course payments between the platform and the
// mentor, tracks each distribution through settlement, aggregates mentor
// earnings, and decomposes totals into dated installments.
//
// All amounts are shopspring decimals rounded half away from zero to two
// places. Invariant violations (bad splits, non-positive amounts, fewer than
// one installment) are reported as shared.ErrInvalidConfiguration. State
// violations such as settling a completed distribution are not errors: the
// transition functions return the record unchanged together with false.
package payment
