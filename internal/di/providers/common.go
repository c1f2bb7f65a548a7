package providers

import "time"

// shutdownTimeout bounds graceful shutdown of each handle.
const shutdownTimeout = 30 * time.Second
