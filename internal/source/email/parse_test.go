package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/offercal/internal/model"
)

func TestParsePlainSubject(t *testing.T) {
	raw := "From: offers@travel.wizznews.com\r\n" +
		"Subject: Fly to Rome from 19.99\r\n" +
		"Date: Fri, 02 Jun 2023 14:05:30 +0200\r\n" +
		"\r\n" +
		"body text\r\n"

	offer, err := Parse([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "Fly to Rome from 19.99", offer.Subject)
	assert.True(t, offer.Timestamp.Equal(time.Date(2023, 6, 2, 12, 5, 30, 0, time.UTC)))
	_, offset := offer.Timestamp.Zone()
	assert.Equal(t, 2*60*60, offset)
}

func TestParseEncodedSubject(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		want    string
	}{
		{
			name:    "iso-8859-1 quoted-printable",
			subject: "=?ISO-8859-1?Q?Caf=E9_et_cr=E8me?=",
			want:    "Café et crème",
		},
		{
			name:    "utf-8 base64",
			subject: "=?UTF-8?B?WsO8cmljaCDinIg=?=",
			want:    "Zürich ✈",
		},
		{
			name:    "windows-1252",
			subject: "=?windows-1252?Q?=80_29_only?=",
			want:    "€ 29 only",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := "Subject: " + tt.subject + "\r\n" +
				"Date: Tue, 30 May 2023 10:00:00 +0200\r\n\r\n"

			offer, err := Parse([]byte(raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, offer.Subject)
		})
	}
}

func TestParseHeaderOnlyWithoutSeparator(t *testing.T) {
	raw := "Subject: Budapest weekend\r\nDate: Mon, 05 Jun 2023 08:00:00 +0000"

	offer, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Budapest weekend", offer.Subject)
	assert.Equal(t, 5, offer.Timestamp.Day())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{
			name:  "missing subject",
			raw:   "Date: Fri, 02 Jun 2023 14:05:30 +0200\r\n\r\n",
			field: "Subject",
		},
		{
			name:  "missing date",
			raw:   "Subject: hello\r\n\r\n",
			field: "Date",
		},
		{
			name:  "trailing zone comment",
			raw:   "Subject: hello\r\nDate: Fri, 02 Jun 2023 14:05:30 +0000 (UTC)\r\n\r\n",
			field: "Date",
		},
		{
			name:  "no weekday",
			raw:   "Subject: hello\r\nDate: 02 Jun 2023 14:05:30 +0200\r\n\r\n",
			field: "Date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, model.IsParseError(err))

			var parseErr *model.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.field, parseErr.Field)
		})
	}
}

func TestParseDateDayDigits(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "single digit day", value: "Fri, 2 Jun 2023 09:00:00 +0200"},
		{name: "zero padded day", value: "Fri, 02 Jun 2023 09:00:00 +0200"},
	}

	want := time.Date(2023, time.June, 2, 7, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer, err := Parse([]byte("Subject: Rome deal\r\nDate: " + tt.value + "\r\n\r\n"))
			require.NoError(t, err)
			assert.Equal(t, "Rome deal", offer.Subject)
			assert.True(t, offer.Timestamp.Equal(want))
		})
	}
}

func TestParseDateKeepsOffset(t *testing.T) {
	ts, err := ParseDate(" Sun, 31 Dec 2023 23:30:00 -0500 ")
	require.NoError(t, err)

	assert.Equal(t, 2023, ts.Year())
	assert.Equal(t, time.December, ts.Month())
	assert.Equal(t, 31, ts.Day())
	_, offset := ts.Zone()
	assert.Equal(t, -5*60*60, offset)
}
