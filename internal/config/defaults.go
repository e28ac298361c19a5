package config

// Default values for optional configuration fields.
const (
	DefaultPort            = 3090
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultSendBufferSize  = 64
	DefaultReadBufferSize  = 1024
	DefaultWriteBufferSize = 1024
)

func (c *ServerConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	if c.Socket.SendBufferSize == 0 {
		c.Socket.SendBufferSize = DefaultSendBufferSize
	}
	if c.Socket.ReadBufferSize == 0 {
		c.Socket.ReadBufferSize = DefaultReadBufferSize
	}
	if c.Socket.WriteBufferSize == 0 {
		c.Socket.WriteBufferSize = DefaultWriteBufferSize
	}
}
