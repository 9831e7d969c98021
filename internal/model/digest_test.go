package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigest_Roles(t *testing.T) {
	d := Digest{ByRole: StatsByRole{"staff": {}, "": {}, "student": {}}}
	assert.Equal(t, []string{"", "staff", "student"}, d.Roles())
	assert.Empty(t, Digest{}.Roles())
}
