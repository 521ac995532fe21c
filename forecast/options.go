package forecast

// Options configures a forecast run
type Options struct {
	// IncludeSeasonal adds the phase aligned seasonal profile on top of the trend forecast
	IncludeSeasonal bool `json:"include_seasonal"`
}

// NewDefaultOptions returns a trend only forecast configuration
func NewDefaultOptions() *Options {
	return &Options{
		IncludeSeasonal: false,
	}
}
