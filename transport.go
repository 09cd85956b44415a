package mcpclient

import "github.com/Sathishruw/mcp-filesystem-client/internal/config"

// Transport defines the interface for server communication.
// Implement this to provide custom transports for testing, mocking,
// or alternative communication methods (e.g., remote connections).
//
// The default implementation is StdioTransport which spawns a subprocess.
// Custom transports can be injected via WithTransport.
type Transport = config.Transport
