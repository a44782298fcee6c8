package topology

import "time"

// Cache windows of the default behavior.
const (
	DefaultTTL        = 24 * time.Hour
	MinTTL            = 0
	MaxTTL            = 365 * 24 * time.Hour
	ErrorCachingTTL   = 5 * time.Minute
	DefaultRootObject = "index.html"
	FallbackPagePath  = "/" + DefaultRootObject
)

// ErrorResponse rewrites an origin error status into another response.
type ErrorResponse struct {
	ErrorCode        int           `json:"error_code"`
	ResponseCode     int           `json:"response_code"`
	ResponsePagePath string        `json:"response_page_path"`
	CachingMinTTL    time.Duration `json:"caching_min_ttl"`
}

// Behavior is how the distribution serves the bucket.
type Behavior struct {
	DefaultRootObject    string          `json:"default_root_object"`
	DefaultTTL           time.Duration   `json:"default_ttl"`
	MinTTL               time.Duration   `json:"min_ttl"`
	MaxTTL               time.Duration   `json:"max_ttl"`
	ViewerProtocolPolicy string          `json:"viewer_protocol_policy"`
	AllowedMethods       []string        `json:"allowed_methods"`
	Compress             bool            `json:"compress"`
	IPv6                 bool            `json:"ipv6"`
	HTTPVersion          string          `json:"http_version"`
	PriceClass           PriceClass      `json:"price_class"`
	ErrorResponses       []ErrorResponse `json:"error_responses"`
}

// DefaultBehavior returns the single-page-app behavior: a day of caching,
// HTTPS only, and 403/404 from the private origin answered with index.html.
// S3 answers 403 rather than 404 for missing keys when the reader cannot
// list the bucket, so both codes need the fallback.
func DefaultBehavior(priceClass PriceClass) Behavior {
	if priceClass == "" {
		priceClass = PriceClassAll
	}
	return Behavior{
		DefaultRootObject:    DefaultRootObject,
		DefaultTTL:           DefaultTTL,
		MinTTL:               MinTTL,
		MaxTTL:               MaxTTL,
		ViewerProtocolPolicy: "redirect-to-https",
		AllowedMethods:       []string{"GET", "HEAD"},
		Compress:             true,
		IPv6:                 true,
		HTTPVersion:          "http2and3",
		PriceClass:           priceClass,
		ErrorResponses: []ErrorResponse{
			{ErrorCode: 404, ResponseCode: 200, ResponsePagePath: FallbackPagePath, CachingMinTTL: ErrorCachingTTL},
			{ErrorCode: 403, ResponseCode: 200, ResponsePagePath: FallbackPagePath, CachingMinTTL: ErrorCachingTTL},
		},
	}
}

// ErrorResponseFor returns the rewrite configured for an origin status.
func (b Behavior) ErrorResponseFor(status int) (ErrorResponse, bool) {
	for _, er := range b.ErrorResponses {
		if er.ErrorCode == status {
			return er, true
		}
	}
	return ErrorResponse{}, false
}

// AllowsMethod reports whether the behavior forwards the HTTP method.
func (b Behavior) AllowsMethod(method string) bool {
	for _, m := range b.AllowedMethods {
		if m == method {
			return true
		}
	}
	return false
}
