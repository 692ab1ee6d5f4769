package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		want    Address
		wantErr bool
	}{
		{in: "[3:1:0]", want: Address{3, 1, 0}},
		{in: "3:1:0", want: Address{3, 1, 0}},
		{in: "[0]", want: Address{0}},
		{in: "[]", want: Address{}},
		{in: "", want: Address{}},
		{in: "[1:x]", wantErr: true},
		{in: "[-1]", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAddress(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddress_Relations(t *testing.T) {
	a := Address{3, 1, 0}

	assert.Equal(t, "[3:1:0]", a.String())
	assert.Equal(t, "[]", Address{}.String())
	assert.True(t, a.HasPrefix(Address{3}))
	assert.True(t, a.HasPrefix(Address{}))
	assert.False(t, a.HasPrefix(Address{3, 2}))
	assert.False(t, Address{3}.HasPrefix(a))
	assert.True(t, a.Equal(Address{3, 1, 0}))
	assert.False(t, a.Equal(Address{3, 1}))

	child := a.Child(4)
	assert.Equal(t, Address{3, 1, 0, 4}, child)
	assert.Equal(t, Address{3, 1, 0}, a, "Child must not alias the parent")
}

func TestAddress_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		At Address `json:"at"`
	}{At: Address{2, 0}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"[2:0]"}`, string(data))

	var decoded struct {
		At Address `json:"at"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Address{2, 0}, decoded.At)
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in      string
		want    Selector
		wantErr bool
	}{
		{in: "stack_test.go[0:2]", want: Selector{File: "stack_test.go", Address: Address{0, 2}}},
		{in: "[1]", want: Selector{Address: Address{1}}},
		{in: "./specs/stack.go:42", want: Selector{File: "./specs/stack.go", Line: 42}},
		{in: "stack.go[0", wantErr: true},
		{in: "stack.go", wantErr: true},
		{in: "stack.go:zero", wantErr: true},
		{in: "stack.go:0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSelector(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.HasAddress(), got.HasAddress())
		})
	}
}
