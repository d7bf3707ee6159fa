package entity

// VerifyStatus is the outcome of a verification attempt. The three values are
// deliberately coarse: a consumed code, an expired code, and a wrong code all
// surface as VerifyInvalidOrExpired, never anything finer.
type VerifyStatus int

const (
	// VerifyNoActiveOTP means no code was ever issued, or the slot is empty.
	VerifyNoActiveOTP VerifyStatus = iota
	// VerifyInvalidOrExpired means the code was wrong, expired, or already used.
	VerifyInvalidOrExpired
	// VerifySuccess means the code matched and is now consumed.
	VerifySuccess
)

// String returns the wire representation of the status.
func (v VerifyStatus) String() string {
	switch v {
	case VerifySuccess:
		return "success"
	case VerifyNoActiveOTP:
		return "no_active_otp"
	case VerifyInvalidOrExpired:
		return "invalid_or_expired"
	default:
		return "invalid_or_expired"
	}
}
