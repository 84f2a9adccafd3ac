package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityRefBuilders(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"entity", EntityRef(CategoryDefinitions, "Pet"), "#/definitions/Pet"},
		{"parameter", EntityRef(CategoryParameters, "limit"), "#/parameters/limit"},
		{"security", EntityRef(CategorySecurityDefinitions, "api_key"), "#/securityDefinitions/api_key"},
		{"escaped", EntityRef(CategoryDefinitions, "a/b~c"), "#/definitions/a~1b~0c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	for _, token := range []string{"plain", "a/b", "~tilde", "~1literal", "x/~/y"} {
		assert.Equal(t, token, UnescapeToken(EscapeToken(token)), token)
	}
}

func TestSplitSegments(t *testing.T) {
	tests := []struct {
		fragment string
		want     []string
	}{
		{"#/definitions/Pet", []string{"definitions", "Pet"}},
		{"#/definitions/Pet/properties/name", []string{"definitions", "Pet", "properties", "name"}},
		{"#//definitions//Pet/", []string{"definitions", "Pet"}},
		{"#/", []string{}},
		{"#", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.fragment, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSegments(tt.fragment))
		})
	}
}
