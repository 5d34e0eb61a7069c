package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice int64 = 1
	bob   int64 = 2
)

func strPtr(s string) *string { return &s }

func TestCreateDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepository())

	tests := []struct {
		name    string
		req     EventRequest
		wantErr error
	}{
		{"bad date", EventRequest{Name: "Quiz", DueDate: "05/01/2024", DueTime: "09:00"}, ErrInvalidDate},
		{"bad time", EventRequest{Name: "Quiz", DueDate: "2024-05-01", DueTime: "9am"}, ErrInvalidTime},
		{"out of range time", EventRequest{Name: "Quiz", DueDate: "2024-05-01", DueTime: "25:00"}, ErrInvalidTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, alice, &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	e, err := svc.Create(ctx, alice, &EventRequest{Name: "  Problem set 3 ", DueDate: "2024-05-01", DueTime: "23:59"})
	require.NoError(t, err)
	assert.Equal(t, TypeHomework, e.Type)
	assert.Equal(t, "Problem set 3", e.Name)
	assert.Equal(t, "2024-05-01", e.ToResponse().DueDate)
}

func TestEventsAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepository())

	exam, err := svc.Create(ctx, alice, &EventRequest{
		Name: "Midterm", DueDate: "2024-05-10", DueTime: "10:00", Type: "exam",
		GroupLabel: strPtr("Algo Study"),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, alice, &EventRequest{Name: "Reading", DueDate: "2024-05-02", DueTime: "08:00"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, &EventRequest{Name: "Lab", DueDate: "2024-05-03", DueTime: "14:00", Type: "project"})
	require.NoError(t, err)

	events, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Reading", events[0].Name)

	_, err = svc.Get(ctx, exam.ID, bob)
	assert.ErrorIs(t, err, ErrEventNotFound)
	_, err = svc.Update(ctx, exam.ID, bob, &EventRequest{Name: "Hijack", DueDate: "2024-05-10", DueTime: "10:00"})
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, exam.ID, bob), ErrEventNotFound)

	updated, err := svc.Update(ctx, exam.ID, alice, &EventRequest{
		Name: "Midterm", DueDate: "2024-05-11", DueTime: "10:30", Type: "exam", Status: strPtr("studying"),
	})
	require.NoError(t, err)
	assert.Equal(t, "10:30", updated.DueTime)
	assert.Equal(t, "studying", *updated.Status)
	assert.Nil(t, updated.GroupLabel)

	require.NoError(t, svc.Delete(ctx, exam.ID, alice))
	_, err = svc.Get(ctx, exam.ID, alice)
	assert.ErrorIs(t, err, ErrEventNotFound)
}
