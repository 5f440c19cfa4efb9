package email

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message"
	// Register charset decoders (iso-8859-*, windows-125x, koi8-r, ...)
	// for RFC 2047 encoded words.
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"

	"github.com/nhle/offercal/internal/model"
)

// DateLayout is the only accepted shape of the Date header, e.g.
// "Fri, 02 Jun 2023 14:05:30 +0200". The day may have one or two digits.
const DateLayout = "Mon, 2 Jan 2006 15:04:05 -0700"

var errMissingHeader = errors.New("header missing")

// Parse reads the header block of a raw message (header-only or full) and
// returns the offer it describes. Subject encoded words are decoded with
// their declared charset.
func Parse(raw []byte) (model.Offer, error) {
	// Terminate header-only fetches that lack the blank separator line.
	r := bufio.NewReader(io.MultiReader(
		bytes.NewReader(raw), strings.NewReader("\r\n\r\n"),
	))

	th, err := textproto.ReadHeader(r)
	if err != nil {
		return model.Offer{}, &model.ParseError{Field: "message header", Err: err}
	}
	h := mail.Header{Header: message.Header{Header: th}}

	if !h.Has("Subject") {
		return model.Offer{}, &model.ParseError{Field: "Subject", Err: errMissingHeader}
	}
	subject, err := h.Subject()
	if err != nil {
		return model.Offer{}, &model.ParseError{
			Field: "Subject",
			Value: h.Get("Subject"),
			Err:   err,
		}
	}

	timestamp, err := ParseDate(h.Get("Date"))
	if err != nil {
		return model.Offer{}, err
	}

	return model.Offer{Timestamp: timestamp, Subject: subject}, nil
}

// ParseDate parses a Date header value with DateLayout.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, &model.ParseError{Field: "Date", Err: errMissingHeader}
	}

	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &model.ParseError{Field: "Date", Value: value, Err: err}
	}

	return t, nil
}
