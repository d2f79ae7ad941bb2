package common

import (
	"math"
	"time"
)

// gin context keys
const (
	RequestIDKey = "request_id"
	UserKey      = "user"
)

const (
	RequestIDHeader = "X-Request-Id"
	TokenHeader     = "X-Token"
)

// Session tokens live under auth_<token> for a day.
const (
	AuthKeyPrefix = "auth_"
	TokenTTL      = 24 * time.Hour
)

const ItemsPerPage = 20

// MaxPage keeps page*ItemsPerPage inside a 32-bit offset.
const MaxPage = math.MaxInt32 / ItemsPerPage

// ThumbnailSizes are the widths generated for every image upload.
var ThumbnailSizes = []int{500, 250, 100}
