package differ

// Option is a functional option for configuring Differ
type Option func(*differ)

// WithIgnoredFields sets fields to ignore during comparison
func WithIgnoredFields(fields ...string) Option {
	return func(d *differ) {
		for _, field := range fields {
			d.ignoreFields[field] = true
		}
	}
}

// WithExtraFields enables or disables comparison of extra override fields
func WithExtraFields(enabled bool) Option {
	return func(d *differ) {
		d.compareExtra = enabled
	}
}
