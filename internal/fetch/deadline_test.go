package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDeadline_MonthNameWithYear(t *testing.T) {
	html := `<html><body><main>
		<h2>Dates and Deadlines</h2>
		<p>Early Action: November 1, 2025</p>
		<p>Regular Decision deadline: January 5, 2026</p>
	</main></body></html>`

	date, ok := ExtractDeadline(html)
	require.True(t, ok)
	assert.Equal(t, "2026-01-05", date)
}

func TestExtractDeadline_MonthNameWithoutYear(t *testing.T) {
	html := `<html><body><main>
		<p>Regular Decision applications are due January 15.</p>
	</main></body></html>`

	date, ok := ExtractDeadline(html)
	require.True(t, ok)
	assert.Equal(t, "1/15", date)
}

func TestExtractDeadline_NumericDate(t *testing.T) {
	html := `<html><body><main>
		<p>Application deadline: 1/15/2026</p>
	</main></body></html>`

	date, ok := ExtractDeadline(html)
	require.True(t, ok)
	assert.Equal(t, "01-15-2026", date)
}

func TestExtractDeadline_PrefersRegularDecision(t *testing.T) {
	html := `<html><body><main>
		<p>Scholarship deadline: December 1, 2025</p>
		<p>Regular Decision: February 1, 2026</p>
	</main></body></html>`

	date, ok := ExtractDeadline(html)
	require.True(t, ok)
	assert.Equal(t, "2026-02-01", date)
}

func TestExtractDeadline_NoDeadline(t *testing.T) {
	html := `<html><body><main>
		<p>Welcome to our admissions page. Campus tours run daily.</p>
	</main></body></html>`

	_, ok := ExtractDeadline(html)
	assert.False(t, ok)
}
