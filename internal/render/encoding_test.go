package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEncoding(t *testing.T) {
	cases := []struct {
		in   string
		want Encoding
	}{
		{"", EncodingHTMLEntities},
		{"html_entities", EncodingHTMLEntities},
		{"utf8", EncodingUTF8},
		{"UTF-8", EncodingUTF8},
		{" strict_ascii ", EncodingStrictASCII},
	}
	for _, c := range cases {
		got, err := ParseEncoding(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}

	_, err := ParseEncoding("latin1")
	assert.Error(t, err)
}

func TestApplyHTMLEntities(t *testing.T) {
	got := EncodingHTMLEntities.Apply("temp 21°C, ås")
	assert.Equal(t, "temp 21&#176;C, &#229;s", got)
}

func TestApplyStrictASCII(t *testing.T) {
	got := EncodingStrictASCII.Apply("temp 21°C, ås")
	assert.Equal(t, "temp 21C, s", got)
}

func TestApplyUTF8Passthrough(t *testing.T) {
	in := "temp 21°C"
	assert.Equal(t, in, EncodingUTF8.Apply(in))
}
