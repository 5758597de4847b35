package clock

import (
	"fmt"
	"time"

	"github.com/beevik/ntp"
)

// ntpTimeout bounds a single NTP exchange; exceeding it is a sync failure
// like any other.
const ntpTimeout = 5 * time.Second

// NTPQuery is the production QueryFunc. It performs a single SNTP exchange
// and derives the wall time from the measured clock offset.
func NTPQuery(server string) (time.Time, error) {
	resp, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: ntpTimeout})
	if err != nil {
		return time.Time{}, fmt.Errorf("ntp query %s: %w", server, err)
	}
	if err := resp.Validate(); err != nil {
		return time.Time{}, fmt.Errorf("ntp response from %s: %w", server, err)
	}
	return time.Now().UTC().Add(resp.ClockOffset), nil
}
