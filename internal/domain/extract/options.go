package extract

import "github.com/okian/guildscore/pkg/logger"

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for boundary debug output.
func WithLogger(l logger.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.log = l
		}
	}
}
