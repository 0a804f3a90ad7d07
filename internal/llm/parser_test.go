package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFences(tt.in))
		})
	}
}

func TestToRawJSON(t *testing.T) {
	raw, err := toRawJSON("```json\n{\"predicted_sex\":\"male\"}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `{"predicted_sex":"male"}`, string(raw))

	_, err = toRawJSON("The chick is probably male.")
	require.ErrorIs(t, err, common.ErrMalformedResponse)

	_, err = toRawJSON("   ")
	require.ErrorIs(t, err, common.ErrMalformedResponse)
}

func TestClamp01(t *testing.T) {
	assert.InDelta(t, 0.0, clamp01(-0.2), 1e-9)
	assert.InDelta(t, 0.4, clamp01(0.4), 1e-9)
	assert.InDelta(t, 1.0, clamp01(3), 1e-9)
}
