package wake

import "context"

// Interface blocks until the wake word is heard.
type Interface interface {
	Detect(ctx context.Context) error
}
