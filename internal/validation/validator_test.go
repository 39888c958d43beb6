package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Color    string `json:"color" validate:"required,hexcolor6"`
	Slug     string `json:"slug" validate:"required,slug"`
}

func TestUsernameRule(t *testing.T) {
	valid := []string{"alice", "bob.smith", "user+tag@host", "иван_99", "a-b"}
	for _, u := range valid {
		assert.True(t, IsValidUsername(u), u)
	}
	invalid := []string{"me", "with space", "semi;colon", ""}
	for _, u := range invalid {
		assert.False(t, IsValidUsername(u), u)
	}
}

func TestCustomRules(t *testing.T) {
	v := Get()

	assert.NoError(t, v.Struct(sample{Username: "alice", Color: "#E26C2D", Slug: "breakfast_1"}))

	err := v.Struct(sample{Username: "me", Color: "red", Slug: "завтрак"})
	require.Error(t, err)

	fields := FieldErrors(err)
	require.Len(t, fields, 3)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "color")
	assert.Contains(t, fields, "slug")
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(assert.AnError))
}

func TestRegisterGinValidators(t *testing.T) {
	assert.NoError(t, RegisterGinValidators())
}

func TestMessage(t *testing.T) {
	v := Get()
	assert.Equal(t, "this field is required", Message(v.Var("", "required")))
	assert.Equal(t, "color must be a hex value like #E26C2D", Message(v.Var("green", "hexcolor6")))
	assert.Empty(t, Message(v.Var("#E26C2D", "hexcolor6")))
	assert.Equal(t, assert.AnError.Error(), Message(assert.AnError))
}
