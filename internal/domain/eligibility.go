package domain

// Eligibility is the investor's KYC verdict as reported by the profile
// service. Both flags must be true before any allocation is attempted.
type Eligibility struct {
	UserID        string
	CanInvest     bool
	EmailVerified bool
}

// CheckInvest returns ErrNotEligible unless the investor passed KYC and
// verified their email.
func (e *Eligibility) CheckInvest() error {
	if !e.CanInvest || !e.EmailVerified {
		return ErrNotEligible
	}
	return nil
}
