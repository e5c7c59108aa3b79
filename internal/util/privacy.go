package util

// MaskHostname masks a hostname for privacy in outbound payloads
func MaskHostname(hostname string) string {
	if len(hostname) < 2 {
		return "host-****"
	}
	return "host-" + hostname[:2] + "**"
}
