// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserDisplayName(t *testing.T) {
	u := &User{Email: "ali@pucit.edu.pk", FirstName: "Ali", LastName: "Raza"}
	assert.Equal(t, "Ali Raza", u.DisplayName())

	u = &User{Email: "ali@pucit.edu.pk"}
	assert.Equal(t, "ali@pucit.edu.pk", u.DisplayName())

	var nilUser *User
	assert.Equal(t, "", nilUser.DisplayName())
}

func TestUserInitials(t *testing.T) {
	u := &User{FirstName: "sara", LastName: "khan"}
	assert.Equal(t, "SK", u.Initials())

	// Email fallback when names are missing
	u = &User{Email: "zee@pucit.edu.pk"}
	assert.Equal(t, "Z", u.Initials())
}

func TestRegistrationValidate(t *testing.T) {
	tests := []struct {
		name     string
		reg      Registration
		problems int
	}{
		{
			name: "valid",
			reg: Registration{
				Email:           "a.b@pucit.edu.pk",
				Password:        "longenough",
				PasswordConfirm: "longenough",
			},
			problems: 0,
		},
		{
			name: "wrong domain",
			reg: Registration{
				Email:           "a.b@gmail.com",
				Password:        "longenough",
				PasswordConfirm: "longenough",
			},
			problems: 1,
		},
		{
			name: "short password",
			reg: Registration{
				Email:           "a.b@pucit.edu.pk",
				Password:        "short",
				PasswordConfirm: "short",
			},
			problems: 1,
		},
		{
			name: "mismatch",
			reg: Registration{
				Email:           "a.b@pucit.edu.pk",
				Password:        "longenough",
				PasswordConfirm: "different1",
			},
			problems: 1,
		},
		{
			name:     "everything wrong",
			reg:      Registration{Email: "x@y.z", Password: "p", PasswordConfirm: "q"},
			problems: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.reg.Validate(), tt.problems)
		})
	}
}

func TestThread(t *testing.T) {
	parent := 1
	comments := []Comment{
		{ID: 1, Content: "top"},
		{ID: 2, Content: "reply", Parent: &parent},
		{ID: 3, Content: "another top"},
	}

	top, replies := Thread(comments)
	assert.Len(t, top, 2)
	assert.Len(t, replies[1], 1)
	assert.Equal(t, "reply", replies[1][0].Content)
	assert.True(t, replies[1][0].IsReply())
	assert.False(t, top[0].IsReply())
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		delta time.Duration
		want  string
	}{
		{30 * time.Second, "just now"},
		{90 * time.Second, "1 minute ago"},
		{3 * time.Hour, "3 hours ago"},
		{26 * time.Hour, "1 day ago"},
		{8 * 24 * time.Hour, "1 week ago"},
		{400 * 24 * time.Hour, "1 year ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeAgo(now.Add(-tt.delta), now))
	}

	assert.Equal(t, "", TimeAgo(time.Time{}, now))
}

func TestCountHelpers(t *testing.T) {
	notes := []Notification{{IsRead: true}, {IsRead: false}, {IsRead: false}}
	assert.Equal(t, 2, CountUnread(notes))

	reports := []Report{
		{Status: ReportPending}, {Status: ReportPending}, {Status: ReportResolved},
	}
	counts := CountByStatus(reports)
	assert.Equal(t, 2, counts[ReportPending])
	assert.Equal(t, 1, counts[ReportResolved])
	assert.Equal(t, 0, counts[ReportDismissed])
}

func TestRoleCanModerate(t *testing.T) {
	assert.False(t, RoleUser.CanModerate())
	assert.True(t, RoleModerator.CanModerate())
	assert.True(t, RoleAdmin.CanModerate())
}
