package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceOptionsParsesPairs(t *testing.T) {
	cfg := &Config{Personas: "Alex:alloy, Sam:onyx ,Nova:nova"}

	options, err := cfg.VoiceOptions()
	require.NoError(t, err)
	assert.Equal(t, []VoiceOption{
		{Persona: "Alex", Voice: "alloy"},
		{Persona: "Sam", Voice: "onyx"},
		{Persona: "Nova", Voice: "nova"},
	}, options)
}

func TestVoiceOptionsRejectsMalformedEntries(t *testing.T) {
	for _, personas := range []string{"Alex", "Alex:", ":alloy", ""} {
		cfg := &Config{Personas: personas}
		_, err := cfg.VoiceOptions()
		assert.Error(t, err, "personas %q", personas)
	}
}
