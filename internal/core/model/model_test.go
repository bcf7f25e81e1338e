package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteWorkLifecycle(t *testing.T) {
	t.Run("approve sets approver and timestamp", func(t *testing.T) {
		entry := &RemoteWork{Status: StatusNew}
		approver := &User{ID: 1, Username: "admin"}
		at := time.Now()

		entry.Approve(approver, at)

		assert.True(t, entry.IsApproved())
		assert.Equal(t, approver, entry.ApprovedBy)
		require.NotNil(t, entry.ApprovedAt)
		assert.Equal(t, at, *entry.ApprovedAt)
	})

	t.Run("reject clears any previous approval", func(t *testing.T) {
		entry := &RemoteWork{Status: StatusNew}
		entry.Approve(&User{ID: 1}, time.Now())

		entry.Reject()

		assert.True(t, entry.IsRejected())
		assert.Nil(t, entry.ApprovedBy)
		assert.Nil(t, entry.ApprovedAt)
	})
}

func TestDayValue(t *testing.T) {
	assert.Equal(t, 1.0, (&RemoteWork{}).DayValue())
	assert.Equal(t, 0.5, (&RemoteWork{HalfDay: true}).DayValue())
}

func TestInfoForType(t *testing.T) {
	t.Run("known types carry their metadata", func(t *testing.T) {
		info := InfoForType(TypeBusinessTrip)
		assert.Equal(t, "Business trip", info.Label)
		assert.Equal(t, "fas fa-car", info.Icon)
		assert.Equal(t, "#f76707", info.Color)
	})

	t.Run("unknown types fall back to homeoffice", func(t *testing.T) {
		info := InfoForType("sabbatical")
		assert.Equal(t, TypeHomeoffice, info.Type)
	})

	t.Run("all types are listed in stable order", func(t *testing.T) {
		types := AllTypes()
		require.Len(t, types, 2)
		assert.Equal(t, TypeHomeoffice, types[0].Type)
		assert.Equal(t, TypeBusinessTrip, types[1].Type)
	})
}
