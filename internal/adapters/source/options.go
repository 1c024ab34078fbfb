package source

import "github.com/okian/excess/pkg/logger"

// Option applies a configuration option to the CSVLoader.
type Option func(*CSVLoader)

// WithLogger sets the loader's logger.
func WithLogger(l logger.Logger) Option {
	return func(c *CSVLoader) {
		if l != nil {
			c.logger = l
		}
	}
}
