package validator

import "strings"

// DefaultBlockedMarker is the phrase that marks a blocked feature's reason.
const DefaultBlockedMarker = "Blocked:"

// ReasonPolicy decides whether a blocked feature's notes explain the block.
type ReasonPolicy interface {
	HasReason(notes string) bool
}

// MarkerPolicy accepts notes that contain any of its markers.
type MarkerPolicy struct {
	Markers    []string
	IgnoreCase bool
}

// DefaultReasonPolicy returns the policy used when none is configured.
func DefaultReasonPolicy() MarkerPolicy {
	return MarkerPolicy{Markers: []string{DefaultBlockedMarker}}
}

// HasReason implements ReasonPolicy.
func (p MarkerPolicy) HasReason(notes string) bool {
	if strings.TrimSpace(notes) == "" {
		return false
	}
	if p.IgnoreCase {
		notes = strings.ToLower(notes)
	}
	for _, m := range p.Markers {
		if m == "" {
			continue
		}
		if p.IgnoreCase {
			m = strings.ToLower(m)
		}
		if strings.Contains(notes, m) {
			return true
		}
	}
	return false
}
