package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetString(t *testing.T) {
	t.Setenv("TABLEPOS_TEST_STRING", "production")
	assert.Equal(t, "production", GetString("TABLEPOS_TEST_STRING", "development"))
	assert.Equal(t, "development", GetString("TABLEPOS_TEST_UNSET", "development"))
}

func TestGetInt(t *testing.T) {
	t.Setenv("TABLEPOS_TEST_INT", "12")
	t.Setenv("TABLEPOS_TEST_BAD_INT", "twelve")

	assert.Equal(t, 12, GetInt("TABLEPOS_TEST_INT", 10))
	assert.Equal(t, 10, GetInt("TABLEPOS_TEST_BAD_INT", 10))
	assert.Equal(t, 10, GetInt("TABLEPOS_TEST_UNSET", 10))
}

func TestGetBool(t *testing.T) {
	t.Setenv("TABLEPOS_TEST_BOOL", "true")
	t.Setenv("TABLEPOS_TEST_BAD_BOOL", "maybe")

	assert.True(t, GetBool("TABLEPOS_TEST_BOOL", false))
	assert.False(t, GetBool("TABLEPOS_TEST_BAD_BOOL", false))
	assert.True(t, GetBool("TABLEPOS_TEST_UNSET", true))
}
