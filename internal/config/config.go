package config

// ServerConfig is the root configuration for a display server instance.
type ServerConfig struct {
	Server ListenConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Socket SocketConfig `yaml:"socket"`
}

// ListenConfig holds the HTTP/websocket listener settings.
type ListenConfig struct {
	Host string    `yaml:"host"`
	Port int       `yaml:"port"`
	TLS  TLSConfig `yaml:"tls"`
}

// TLSConfig holds an optional certificate pair. Both fields empty means
// plain HTTP; certificate provisioning itself happens outside this
// process.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// Enabled reports whether a certificate pair is configured.
func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// SocketConfig holds websocket server settings.
type SocketConfig struct {
	SendBufferSize  int `yaml:"send_buffer_size"`  // Per-connection outbound message buffer
	ReadBufferSize  int `yaml:"read_buffer_size"`  // Underlying read buffer bytes
	WriteBufferSize int `yaml:"write_buffer_size"` // Underlying write buffer bytes
}
