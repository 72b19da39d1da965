package version

// Version is the server version reported in the initialize response.
const Version = "0.3.1"

// ProtocolVersion is the MCP protocol revision this server speaks by
// default when the client requests an unknown revision.
const ProtocolVersion = "2025-03-26"

// SupportedProtocolVersions lists the revisions the server will echo
// back verbatim during negotiation.
var SupportedProtocolVersions = []string{
	"2025-03-26",
	"2024-11-05",
}
