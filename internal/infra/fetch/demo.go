package fetch

import "context"

// DemoFetcher is the canned acquisition strategy used alongside the demo
// model client: URL requests succeed without any network access.
type DemoFetcher struct{}

// NewDemoFetcher constructs the demo acquisition strategy.
func NewDemoFetcher() *DemoFetcher {
	return &DemoFetcher{}
}

func (*DemoFetcher) FetchContent(context.Context, string) (string, error) {
	return "[Demo mode: URL content not fetched]", nil
}

func (*DemoFetcher) FetchTitle(context.Context, string) string {
	return "Demo Article"
}
