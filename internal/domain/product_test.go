package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilteredAttributes(t *testing.T) {
	attrs := []Attribute{
		{Key: "Довжина", Value: "2.7 м"},
		{Key: "Код товару", Value: "12345"},
		{Key: "Виробник", Value: "Flagman"},
		{Key: "Вага", Value: "150 г"},
	}

	got := FilteredAttributes(attrs)

	assert.Equal(t, []Attribute{
		{Key: "Довжина", Value: "2.7 м"},
		{Key: "Вага", Value: "150 г"},
	}, got)
}

func TestParseSKUFilter(t *testing.T) {
	set := ParseSKUFilter("A1, B2\nC3   D4,,\n")
	assert.Len(t, set, 4)
	for _, sku := range []string{"A1", "B2", "C3", "D4"} {
		_, ok := set[sku]
		assert.True(t, ok, sku)
	}

	assert.Nil(t, ParseSKUFilter(""))
	assert.Nil(t, ParseSKUFilter("  \n  "))
}
