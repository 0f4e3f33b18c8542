package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Capability is a single coarse-grained permission on an enrollment record.
type Capability uint8

const (
	CapEnrolled Capability = 1 << iota
	CapAdmin
)

// AllCapabilities lists every known capability in display order.
var AllCapabilities = []Capability{CapEnrolled, CapAdmin}

func (c Capability) String() string {
	switch c {
	case CapEnrolled:
		return "enrolled"
	case CapAdmin:
		return "admin"
	default:
		return fmt.Sprintf("capability(%d)", uint8(c))
	}
}

// ParseCapability maps a tag to a known capability. Matching is case-insensitive.
func ParseCapability(tag string) (Capability, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "enrolled":
		return CapEnrolled, nil
	case "admin":
		return CapAdmin, nil
	default:
		return 0, fmt.Errorf("unknown capability %q", tag)
	}
}

// CapabilitySet is a bitset of capabilities. It is stored as an integer column
// and rendered as a list of tags in JSON.
type CapabilitySet uint8

func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s = s.With(c)
	}
	return s
}

func (s CapabilitySet) Has(c Capability) bool { return uint8(s)&uint8(c) != 0 }

func (s CapabilitySet) With(c Capability) CapabilitySet { return CapabilitySet(uint8(s) | uint8(c)) }

func (s CapabilitySet) Without(c Capability) CapabilitySet { return CapabilitySet(uint8(s) &^ uint8(c)) }

// Tags returns the set as tag strings, never nil.
func (s CapabilitySet) Tags() []string {
	tags := make([]string, 0, len(AllCapabilities))
	for _, c := range AllCapabilities {
		if s.Has(c) {
			tags = append(tags, c.String())
		}
	}
	return tags
}

func (s CapabilitySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Tags())
}

func (s *CapabilitySet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	var set CapabilitySet
	for _, tag := range tags {
		c, err := ParseCapability(tag)
		if err != nil {
			return err
		}
		set = set.With(c)
	}
	*s = set
	return nil
}
