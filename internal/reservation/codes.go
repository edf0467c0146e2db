package reservation

import (
	"fmt"
	"math/rand"
	"time"
)

// NewReservationCode returns PREFIX-YYYY-MM-DD-RRRR for the day of now,
// RRRR a random number in 1000..9999.
func NewReservationCode(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%d", prefix, now.Format("2006-01-02"), 1000+rand.Intn(9000))
}

// NewTransactionID returns TRX- followed by nine random digits
func NewTransactionID() string {
	return fmt.Sprintf("TRX-%d", 100000000+rand.Intn(900000000))
}
