package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeFor(t *testing.T) {
	cases := []struct {
		percent float64
		want    string
	}{
		{95, "A"},
		{80, "A"},
		{79.9, "B"},
		{70, "B"},
		{65, "C"},
		{55, "D"},
		{45, "E"},
		{39.9, "F"},
		{0, "F"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, gradeFor(tc.percent), "percent %v", tc.percent)
	}
}
