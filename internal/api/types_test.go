// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	assert.Equal(t, StatusInProgress, NextStatus(StatusNew))
	assert.Equal(t, StatusNew, NextStatus(StatusComplete))
	assert.Equal(t, StatusNew, NextStatus(StatusCompleted))
	assert.Equal(t, StatusSentForReview, NextStatus("in progress"))
	assert.Equal(t, StatusNew, NextStatus("Archived"))
}

func TestMatchStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"new", StatusNew, true},
		{" SENT FOR REVIEW ", StatusSentForReview, true},
		{"completed", StatusComplete, true},
		{"done", "", false},
	}
	for _, tt := range tests {
		got, ok := MatchStatus(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.True(t, ValidStatus(StatusCompleted))
	assert.False(t, ValidStatus("done"))
}
