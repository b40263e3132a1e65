package auth

import "time"

// timeNow is overridden in tests to make invite-expiry checks deterministic.
var timeNow = time.Now
