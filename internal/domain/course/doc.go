// Package course holds the course rules of the economics engine: the duration
// parser, the tier classifier with its capability predicates, and the
// validation gate a course record passes before it is accepted.
//
// Tier gating lives only here. Anything that needs to know whether a course
// needs a vacancy, admits scholarships or gets a co-signed certificate asks
// the Tier:
//
//	tier := course.Classify("5 months")  // TierBundle
//	tier.RequiresVacancy()                // true
//
// Everything in this package is pure and safe for concurrent use.
package course
