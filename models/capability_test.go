package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCapability(t *testing.T) {
	tests := []struct {
		tag     string
		want    Capability
		wantErr bool
	}{
		{tag: "enrolled", want: CapEnrolled},
		{tag: " Admin ", want: CapAdmin},
		{tag: "enroled", wantErr: true},
		{tag: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseCapability(tt.tag)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCapabilitySet(t *testing.T) {
	t.Run("should union and difference", func(t *testing.T) {
		s := NewCapabilitySet()
		assert.Empty(t, s.Tags())

		s = s.With(CapEnrolled).With(CapEnrolled)
		assert.True(t, s.Has(CapEnrolled))
		assert.False(t, s.Has(CapAdmin))
		assert.Equal(t, []string{"enrolled"}, s.Tags())

		s = s.With(CapAdmin).Without(CapEnrolled)
		assert.Equal(t, []string{"admin"}, s.Tags())

		s = s.Without(CapEnrolled)
		assert.Equal(t, []string{"admin"}, s.Tags())
	})

	t.Run("should render as tag list in json", func(t *testing.T) {
		rec := NewEnrollmentRecord("u1", "a@b.co", nil, time.Unix(0, 0).UTC())
		rec.Capabilities = NewCapabilitySet(CapAdmin, CapEnrolled)

		raw, err := json.Marshal(rec)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"roles":["enrolled","admin"]`)

		var decoded EnrollmentRecord
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, rec.Capabilities, decoded.Capabilities)
	})

	t.Run("should reject unknown tags in json", func(t *testing.T) {
		var s CapabilitySet
		assert.Error(t, json.Unmarshal([]byte(`["enrolled","superuser"]`), &s))
	})
}

func TestEnrollmentRecordCourses(t *testing.T) {
	rec := NewEnrollmentRecord("u1", "a@b.co", nil, time.Now())
	rec.AddCourse("course-1")
	rec.AddCourse("course-1")
	assert.Len(t, rec.EnrolledCourses, 1)
	assert.True(t, rec.InCourse("course-1"))

	clone := rec.Clone()
	clone.AddCourse("course-2")
	assert.Len(t, rec.EnrolledCourses, 1)
	assert.Len(t, clone.EnrolledCourses, 2)
}
