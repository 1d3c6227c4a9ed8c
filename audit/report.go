package audit

// Report summarizes admission outcomes over a set of entries.
//
// Every admission decision is an authentication attempt. Only decisions that
// passed authentication count as authorization attempts.
type Report struct {
	Total int `json:"total"`

	AuthenticationAttempts int `json:"authenticationAttempts"`
	AuthenticationFailures int `json:"authenticationFailures"`
	AuthorizationAttempts  int `json:"authorizationAttempts"`
	AuthorizationFailures  int `json:"authorizationFailures"`

	// Compliance values are success percentages in [0, 100]. With no
	// attempts they are 100.
	AuthenticationCompliance float64 `json:"authenticationCompliance"`
	AuthorizationCompliance  float64 `json:"authorizationCompliance"`
	OverallCompliance        float64 `json:"overallCompliance"`
}

// BuildReport computes a Report from entries.
// Entries with actions outside the admission set count toward Total only.
func BuildReport(entries []Entry) Report {
	r := Report{Total: len(entries)}
	for _, e := range entries {
		switch e.Action {
		case ActionAuthenticationFailed:
			r.AuthenticationAttempts++
			r.AuthenticationFailures++
		case ActionAuthorizationFailed:
			r.AuthenticationAttempts++
			r.AuthorizationAttempts++
			r.AuthorizationFailures++
		case ActionAccessGranted:
			r.AuthenticationAttempts++
			r.AuthorizationAttempts++
		}
	}

	r.AuthenticationCompliance = percent(r.AuthenticationAttempts-r.AuthenticationFailures, r.AuthenticationAttempts)
	r.AuthorizationCompliance = percent(r.AuthorizationAttempts-r.AuthorizationFailures, r.AuthorizationAttempts)
	granted := r.AuthorizationAttempts - r.AuthorizationFailures
	r.OverallCompliance = percent(granted, r.AuthenticationAttempts)
	return r
}

func percent(ok, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(ok) * 100 / float64(total)
}
