package cbr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyRate(t *testing.T) {
	raw := []byte(`<?xml version="1.0" encoding="utf-8"?>
		<KeyRateResult>
			<diffgram>
				<KeyRate>
					<KR><DT>2024-03-01T00:00:00</DT><Rate>16.00</Rate></KR>
					<KR><DT>2024-02-01T00:00:00</DT><Rate>15.50</Rate></KR>
				</KeyRate>
			</diffgram>
		</KeyRateResult>`)

	rate, err := parseKeyRate(raw)
	require.NoError(t, err)
	assert.Equal(t, 16.00, rate, "the newest rate comes first")
}

func TestParseKeyRateNoData(t *testing.T) {
	_, err := parseKeyRate([]byte(`<?xml version="1.0"?><KeyRateResult><diffgram/></KeyRateResult>`))
	assert.Error(t, err)
}

func TestParseKeyRateMalformedXML(t *testing.T) {
	_, err := parseKeyRate([]byte(`<open><unclosed></open>`))
	assert.Error(t, err)
}
