package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Status_Precedence(t *testing.T) {
	tests := []struct {
		status     Status
		precedence int
	}{
		{StatusFail, 4},
		{StatusCancelled, 3},
		{StatusPartialPass, 2},
		{StatusPass, 1},
		{StatusNotApplicable, 0},
		{Status("unknown"), -1},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.precedence, tt.status.Precedence())
		})
	}

	// Verify ordering
	assert.True(t, StatusFail.Precedence() > StatusCancelled.Precedence())
	assert.True(t, StatusCancelled.Precedence() > StatusPartialPass.Precedence())
	assert.True(t, StatusPartialPass.Precedence() > StatusPass.Precedence())
	assert.True(t, StatusPass.Precedence() > StatusNotApplicable.Precedence())
}

func Test_Status_IsFailure(t *testing.T) {
	assert.True(t, StatusFail.IsFailure())
	assert.True(t, StatusPartialPass.IsFailure())
	assert.False(t, StatusPass.IsFailure())
	assert.False(t, StatusNotApplicable.IsFailure())
	assert.False(t, StatusCancelled.IsFailure())
}

func Test_Status_IsSuccess(t *testing.T) {
	assert.True(t, StatusPass.IsSuccess())
	assert.False(t, StatusFail.IsSuccess())
	assert.False(t, StatusPartialPass.IsSuccess())
	assert.False(t, StatusNotApplicable.IsSuccess())
}

func Test_Status_Validate(t *testing.T) {
	validStatuses := []Status{StatusPass, StatusFail, StatusPartialPass, StatusNotApplicable, StatusCancelled}

	for _, s := range validStatuses {
		t.Run(string(s), func(t *testing.T) {
			assert.NoError(t, s.Validate())
		})
	}

	invalid := Status("invalid")
	assert.Error(t, invalid.Validate())
}

func Test_Status_Merge(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Status
		expected Status
	}{
		{"fail beats pass", StatusPass, StatusFail, StatusFail},
		{"fail beats partial", StatusPartialPass, StatusFail, StatusFail},
		{"cancelled beats pass", StatusPass, StatusCancelled, StatusCancelled},
		{"pass beats not-applicable", StatusNotApplicable, StatusPass, StatusPass},
		{"merge is symmetric for equal", StatusPass, StatusPass, StatusPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Merge(tt.b))
			assert.Equal(t, tt.expected, tt.b.Merge(tt.a))
		})
	}
}
