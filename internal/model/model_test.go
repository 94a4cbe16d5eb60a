package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp"
	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp/lint"
)

func TestTimestampMap(t *testing.T) {
	// Given
	created := time.Date(2024, 3, 9, 14, 30, 15, 0, time.UTC)
	ts := Timestamps{CreateTime: &created}

	// When
	m := ts.TimestampMap()

	// Then
	assert.Equal(t, map[string]any{
		"createTime": "2024-03-09 14:30:15",
		"updateTime": nil,
	}, m)
}

func TestModels_MarkersAreValid(t *testing.T) {
	err := timestamp.NewRegistry().Validate(Models()...)
	assert.NoError(t, err)
}

func TestModels_NoCreationMarkerOnAssociations(t *testing.T) {
	report, err := lint.CheckDir(".")

	require.NoError(t, err)
	assert.Empty(t, report.Findings)
}
