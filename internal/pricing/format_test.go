package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatINR(t *testing.T) {
	require.Equal(t, "₹590.00", FormatINR(590))
	require.Equal(t, "₹0.00", FormatINR(0))
}

func TestFormatINRIndianGrouping(t *testing.T) {
	require.Equal(t, "₹1,23,456.50", FormatINR(123456.5))
	require.Equal(t, "₹1,000.00", FormatINR(1000))
}
