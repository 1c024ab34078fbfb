package repository

type options struct {
	labels map[string][]string
}

// Option applies a configuration option to New.
type Option func(*options)

// WithLabels attaches source labels to entries by window label, e.g.
// "2015-2019" -> ["Our World in Data"].
func WithLabels(labels map[string][]string) Option {
	return func(o *options) {
		if labels != nil {
			o.labels = labels
		}
	}
}
