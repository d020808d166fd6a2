/*
Package clasp holds the application level constants and shared resources
of the clasp segmentation service.
*/
package clasp

// BuildRevision stores the commit in the git repository at build time and is
// specified with -ldflags at build time.
var BuildRevision = ""

const (
	// ResultKeyPrefix namespaces segmentation results in the
	// environment cache.
	ResultKeyPrefix = "segmentation"

	// StatusKey holds the latest service status in the environment
	// cache while the service runs.
	StatusKey = "service.status"
)

// ResultKey is the cache key of the segmentation with the given id.
func ResultKey(id string) string { return ResultKeyPrefix + "." + id }
