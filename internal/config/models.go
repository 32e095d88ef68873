package config

// DetectionConfig represents the configuration of the detector registry
type DetectionConfig struct {
	Detectors           []string
	NormalizerCacheSize int
	MaxInputBytes       int
	MaxLineBytes        int
	InternalDomains     []string
}

// HeadersConfig names the annotation headers added by the content filter
type HeadersConfig struct {
	Detected string
	Detector string
	From     string
	Date     string
	Internal string
}

// PostfixConfig represents where filtered mail is re-injected
type PostfixConfig struct {
	Address string
	Port    int
	Enabled bool
}

// ServerConfig represents the configuration of the mail filter
type ServerConfig struct {
	FilterType    string
	ListenAddress string
	Headers       HeadersConfig
	Postfix       PostfixConfig
}

// CacheConfig represents the configuration of the result cache
type CacheConfig struct {
	Type       string
	Enabled    bool
	SQLitePath string
	MySQLDSN   string
}

// GetDetection returns the detection configuration
func (c *Config) GetDetection() DetectionConfig {
	return DetectionConfig{
		Detectors:           c.GetStringSlice("detection.detectors"),
		NormalizerCacheSize: c.GetInt("detection.normalizer_cache_size"),
		MaxInputBytes:       c.GetInt("detection.max_input_bytes"),
		MaxLineBytes:        c.GetInt("detection.max_line_bytes"),
		InternalDomains:     c.GetStringSlice("detection.internal_domains"),
	}
}

// GetServer returns the mail filter configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		FilterType:    c.GetString("server.filter_type"),
		ListenAddress: c.GetString("server.listen_address"),
		Headers: HeadersConfig{
			Detected: c.GetString("server.headers.detected"),
			Detector: c.GetString("server.headers.detector"),
			From:     c.GetString("server.headers.from"),
			Date:     c.GetString("server.headers.date"),
			Internal: c.GetString("server.headers.internal"),
		},
		Postfix: PostfixConfig{
			Address: c.GetString("server.postfix.address"),
			Port:    c.GetInt("server.postfix.port"),
			Enabled: c.GetBool("server.postfix.enabled"),
		},
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() CacheConfig {
	return CacheConfig{
		Type:       c.GetString("cache.type"),
		Enabled:    c.GetBool("cache.enabled"),
		SQLitePath: c.GetString("cache.sqlite_path"),
		MySQLDSN:   c.GetString("cache.mysql_dsn"),
	}
}
