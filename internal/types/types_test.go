package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentPatch_Apply(t *testing.T) {
	base := Appointment{
		Name: "A", Email: "a@x.com", Phone: "111",
		Service: "Cut", Time: "10:00", Date: "2024-01-01", Notes: "old",
	}

	tests := []struct {
		name  string
		patch AppointmentPatch
		want  Appointment
	}{
		{
			name:  "notes only",
			patch: AppointmentPatch{Notes: "bring photos"},
			want: Appointment{
				Name: "A", Email: "a@x.com", Phone: "111",
				Service: "Cut", Time: "10:00", Date: "2024-01-01", Notes: "bring photos",
			},
		},
		{
			name:  "service and time",
			patch: AppointmentPatch{Service: "Color", Time: "11:30"},
			want: Appointment{
				Name: "A", Email: "a@x.com", Phone: "111",
				Service: "Color", Time: "11:30", Date: "2024-01-01", Notes: "old",
			},
		},
		{
			name:  "empty patch",
			patch: AppointmentPatch{},
			want:  base,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := base
			tc.patch.Apply(&got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAppointmentPatch_IsEmpty(t *testing.T) {
	assert.True(t, AppointmentPatch{}.IsEmpty())
	assert.False(t, AppointmentPatch{Date: "2024-02-02"}.IsEmpty())
}
