package model

import (
	"sort"
	"time"
)

// DefaultSender is the address promotional offers are sent from.
const DefaultSender = "offers@travel.wizznews.com"

// Offer is one promotional email reduced to when it arrived and what it
// advertised. Offers are values; nothing mutates them after parsing.
type Offer struct {
	// Timestamp is the message's Date header, keeping its UTC offset.
	Timestamp time.Time

	// Subject is the decoded Subject header.
	Subject string
}

// Equal reports whether two offers carry the same instant, the same UTC
// offset and the same subject.
func (o Offer) Equal(other Offer) bool {
	if o.Subject != other.Subject || !o.Timestamp.Equal(other.Timestamp) {
		return false
	}
	_, off := o.Timestamp.Zone()
	_, otherOff := other.Timestamp.Zone()
	return off == otherOff
}

// Date returns the calendar day of the offer in its own UTC offset,
// truncated to midnight UTC so dates compare with ==.
func (o Offer) Date() time.Time {
	return CalendarDate(o.Timestamp)
}

// CalendarDate drops the time of day from t, keeping t's local date.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SortOffers orders offers by calendar date, then by instant. For offers
// that share a UTC offset this is plain ascending timestamp order.
func SortOffers(offers []Offer) {
	sort.SliceStable(offers, func(i, j int) bool {
		di, dj := offers[i].Date(), offers[j].Date()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return offers[i].Timestamp.Before(offers[j].Timestamp)
	})
}
