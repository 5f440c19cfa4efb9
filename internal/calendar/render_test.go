package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/offercal/internal/model"
	"github.com/nhle/offercal/tests/testutil"
)

func TestRenderTable(t *testing.T) {
	out, err := Render([]model.Offer{
		testutil.Offer(2023, time.May, 30, 10, 0, 2, "Paris deal"),
		testutil.Offer(2023, time.June, 2, 9, 0, 2, "Rome deal"),
		testutil.Offer(2023, time.June, 2, 18, 0, 2, "Rome deal, again"),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<table>\n  <thead>\n"))
	assert.Contains(t, out,
		"<tr><th>Month</th><th>Mon</th><th>Tue</th><th>Wed</th><th>Thu</th>"+
			"<th>Fri</th><th>Sat</th><th>Sun</th></tr>")
	assert.Contains(t, out, "<tbody>")
	assert.Equal(t, 1, strings.Count(out, "<tr>\n"))

	assert.Contains(t, out, "<td>2023 June</td>")
	assert.Contains(t, out, `<td title="Paris deal">30 `+Marker+`</td>`)
	assert.Contains(t, out, `<td title="Rome deal; Rome deal, again">2 `+Marker+`</td>`)
	assert.Contains(t, out, "<td>29</td>")
	assert.Contains(t, out, "<td>31</td>")
	assert.Equal(t, 2, strings.Count(out, "title="))
}

func TestRenderEmptyDayHasNoTooltip(t *testing.T) {
	out, err := Render([]model.Offer{
		testutil.Offer(2023, time.June, 7, 12, 0, 0, "only wednesday"),
	})
	require.NoError(t, err)

	for _, day := range []string{"5", "6", "8", "9", "10", "11"} {
		assert.Contains(t, out, "<td>"+day+"</td>")
	}
	assert.Equal(t, 1, strings.Count(out, "title="))
	assert.Equal(t, 1, strings.Count(out, Marker))
}

func TestRenderEscapesSubjects(t *testing.T) {
	out, err := Render([]model.Offer{
		testutil.Offer(2023, time.June, 7, 12, 0, 0, `<script>alert("x")</script>`),
		testutil.Offer(2023, time.June, 7, 13, 0, 0, `Tom & Jerry's "deal"`),
	})
	require.NoError(t, err)

	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, `"x"`)
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "Tom &amp; Jerry&#39;s &#34;deal&#34;")
}

func TestRenderRowPerWeek(t *testing.T) {
	out, err := Render([]model.Offer{
		testutil.Offer(2023, time.January, 2, 8, 0, 0, "first"),
		testutil.Offer(2023, time.February, 26, 8, 0, 0, "last"),
	})
	require.NoError(t, err)

	// Mon 2 Jan .. Sun 26 Feb is eight full weeks.
	assert.Equal(t, 8, strings.Count(out, "<tr>\n"))
	assert.Contains(t, out, "<td>2023 January</td>")
	assert.Contains(t, out, "<td>2023 February</td>")
}
