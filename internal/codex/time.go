package codex

import "time"

// timeNow is replaced in tests to freeze the save timestamp.
var timeNow = time.Now
