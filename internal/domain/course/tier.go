package course

// Tier is the operational and pricing classification of a course.
type Tier string

const (
	TierCrash        Tier = "crash"
	TierSkillFocused Tier = "skill-focused"
	TierBootcamp     Tier = "bootcamp"
	TierBundle       Tier = "bundle"
)

// Classification thresholds. Hour bounds are inclusive upper bounds.
const (
	BundleMinMonths    = 4.0
	CrashMaxHours      = 5.0
	SkillFocusMaxHours = 20.0
	BootcampMaxHours   = 60.0
)

// DefaultTier is assigned when the duration text cannot be parsed.
const DefaultTier = TierSkillFocused

// AllTiers lists tiers from shortest to longest.
var AllTiers = []Tier{TierCrash, TierSkillFocused, TierBootcamp, TierBundle}

// IsValid checks that the tier is one of the four known values.
func (t Tier) IsValid() bool {
	switch t {
	case TierCrash, TierSkillFocused, TierBootcamp, TierBundle:
		return true
	default:
		return false
	}
}

// String returns the wire name of the tier.
func (t Tier) String() string {
	return string(t)
}

// RequiresVacancy reports whether courses of this tier must be linked to a vacancy.
func (t Tier) RequiresVacancy() bool {
	return t == TierBootcamp || t == TierBundle
}

// AllowsScholarship reports whether students may apply for a scholarship.
func (t Tier) AllowsScholarship() bool {
	return t == TierBootcamp || t == TierBundle
}

// RequiresMentorSignature reports whether certificates carry a mentor co-signature.
func (t Tier) RequiresMentorSignature() bool {
	return t == TierBootcamp || t == TierBundle
}

// ParseTier converts a wire name into a Tier.
func ParseTier(s string) (Tier, bool) {
	t := Tier(s)
	return t, t.IsValid()
}

// Classify assigns exactly one tier to a duration string.
//
// Programs of four months or longer are bundles whatever their hour count;
// below that the hour thresholds apply. Unparseable text falls back to
// DefaultTier.
func Classify(durationText string) Tier {
	return ClassifyDuration(ParseDuration(durationText))
}

// ClassifyDuration is Classify for an already parsed duration.
func ClassifyDuration(d Duration) Tier {
	if d.Months >= BundleMinMonths {
		return TierBundle
	}
	if d.Hours <= 0 {
		return DefaultTier
	}

	switch {
	case d.Hours <= CrashMaxHours:
		return TierCrash
	case d.Hours <= SkillFocusMaxHours:
		return TierSkillFocused
	case d.Hours <= BootcampMaxHours:
		return TierBootcamp
	default:
		return TierBundle
	}
}

// RequiresVacancy is the package-level form of Tier.RequiresVacancy.
func RequiresVacancy(t Tier) bool { return t.RequiresVacancy() }

// AllowsScholarship is the package-level form of Tier.AllowsScholarship.
func AllowsScholarship(t Tier) bool { return t.AllowsScholarship() }
